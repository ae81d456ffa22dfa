package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"event-ticketing-console/internal/models"

	"github.com/google/uuid"
)

// InvitationRepository persists sent invitations
type InvitationRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{db: db, now: time.Now}
}

// CreateBatch stores every invitation and reserves its tickets in a single
// transaction. Either all invitations are stored or none are.
func (r *InvitationRepository) CreateBatch(ctx context.Context, eventID int, invitations []models.Invitation) ([]models.Invitation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Quota is checked per category against the sum of the batch
	requested := make(map[string]int)
	for _, inv := range invitations {
		requested[inv.TicketTypeID] += inv.TicketQuantity
	}

	for ticketID, qty := range requested {
		if err := reserve(ctx, tx, eventID, ticketID, qty); err != nil {
			return nil, err
		}
	}

	query := `
		INSERT INTO invitations (id, event_id, ticket_type_id, recipient_name, email, phone_number, ticket_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := r.now()
	stored := make([]models.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		inv.ID = uuid.NewString()
		inv.EventID = eventID
		inv.CreatedAt = now

		_, err := tx.ExecContext(ctx, query,
			inv.ID,
			inv.EventID,
			inv.TicketTypeID,
			inv.RecipientName,
			inv.Email,
			inv.PhoneNumber,
			inv.TicketQuantity,
			inv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create invitation: %w", err)
		}
		stored = append(stored, inv)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invitations: %w", err)
	}

	return stored, nil
}

func reserve(ctx context.Context, tx *sql.Tx, eventID int, ticketID string, qty int) error {
	if _, err := uuid.Parse(ticketID); err != nil {
		return fmt.Errorf("%w: %s", models.ErrTicketNotFound, ticketID)
	}

	var quantity, sold int
	err := tx.QueryRowContext(ctx,
		`SELECT quantity, sold FROM ticket_categories WHERE id = $1 AND event_id = $2 FOR UPDATE`,
		ticketID, eventID,
	).Scan(&quantity, &sold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", models.ErrTicketNotFound, ticketID)
		}
		return fmt.Errorf("failed to lock ticket category: %w", err)
	}

	if sold+qty > quantity {
		return fmt.Errorf("%w: %s has %d remaining, %d requested", models.ErrInsufficientStock, ticketID, quantity-sold, qty)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE ticket_categories SET sold = sold + $2, updated_at = NOW() WHERE id = $1`,
		ticketID, qty,
	)
	if err != nil {
		return fmt.Errorf("failed to reserve tickets: %w", err)
	}

	return nil
}

// ListByEvent retrieves the invitations sent for an event, newest first
func (r *InvitationRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Invitation, error) {
	query := `
		SELECT id, event_id, ticket_type_id, recipient_name, email, phone_number, ticket_quantity, created_at
		FROM invitations
		WHERE event_id = $1
		ORDER BY created_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := make([]models.Invitation, 0)
	for rows.Next() {
		var inv models.Invitation
		err := rows.Scan(
			&inv.ID,
			&inv.EventID,
			&inv.TicketTypeID,
			&inv.RecipientName,
			&inv.Email,
			&inv.PhoneNumber,
			&inv.TicketQuantity,
			&inv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitations: %w", err)
	}

	return invitations, nil
}
