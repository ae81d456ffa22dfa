package repositories

import (
	"context"
	"testing"

	"event-ticketing-console/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitationRepository_CreateBatchReservesQuota(t *testing.T) {
	db := setupTicketTestDB(t)
	tickets := NewTicketRepository(db)
	repo := NewInvitationRepository(db)
	ctx := context.Background()

	p := samplePayload(9002, "Guest")
	p.Quantity = 3
	ticketID, err := tickets.Create(ctx, p)
	require.NoError(t, err)

	stored, err := repo.CreateBatch(ctx, 9002, []models.Invitation{
		{RecipientName: "Budi", PhoneNumber: "+6281234567890", TicketTypeID: ticketID, TicketQuantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotEmpty(t, stored[0].ID)
	assert.Equal(t, 9002, stored[0].EventID)

	_, err = repo.CreateBatch(ctx, 9002, []models.Invitation{
		{RecipientName: "Sari", TicketTypeID: ticketID, TicketQuantity: 2},
	})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	invitations, err := repo.ListByEvent(ctx, 9002)
	require.NoError(t, err)
	assert.Len(t, invitations, 1)

	assert.ErrorIs(t, tickets.Delete(ctx, ticketID), models.ErrTicketsSold)
}
