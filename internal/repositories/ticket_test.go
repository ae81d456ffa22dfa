package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"event-ticketing-console/internal/models"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTicketTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Database tests require test database setup")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func samplePayload(eventID int, name string) models.TicketPayload {
	start := time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC)
	return models.TicketPayload{
		EventID:          eventID,
		Kind:             models.KindTicket,
		Name:             name,
		Description:      "Standard entry ticket",
		Price:            150000,
		Quantity:         100,
		MaxOrderQuantity: 4,
		SalesStart:       start,
		SalesEnd:         start.Add(30 * 24 * time.Hour),
	}
}

func TestTicketRepository_Lifecycle(t *testing.T) {
	db := setupTicketTestDB(t)
	repo := NewTicketRepository(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, samplePayload(9001, "General Admission"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Delete(ctx, id) })

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "General Admission", got.Name)
	assert.Equal(t, 9001, got.EventID)
	assert.Nil(t, got.TicketStart)

	updated := samplePayload(9001, "GA")
	updated.Quantity = 50
	require.NoError(t, repo.Update(ctx, id, updated))

	records, err := repo.ListByEvent(ctx, 9001, models.KindTicket)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	catalog, err := repo.Catalog(ctx, 9001)
	require.NoError(t, err)
	assert.Contains(t, catalog, models.TicketCategory{ID: id, Name: "GA", RemainingQuota: 50})
}

func TestTicketRepository_CreateRejectsInvalidPayload(t *testing.T) {
	repo := NewTicketRepository(nil)

	tests := []struct {
		name   string
		mutate func(p *models.TicketPayload)
	}{
		{"negative price", func(p *models.TicketPayload) { p.Price = -100 }},
		{"missing name", func(p *models.TicketPayload) { p.Name = "" }},
		{"inverted sale window", func(p *models.TicketPayload) { p.SalesStart, p.SalesEnd = p.SalesEnd, p.SalesStart }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePayload(1, "General Admission")
			tt.mutate(&p)

			_, err := repo.Create(context.Background(), p)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestTicketRepository_GetByIDRejectsNonUUID(t *testing.T) {
	repo := NewTicketRepository(nil)

	_, err := repo.GetByID(context.Background(), "tmp-abc-1")
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

// MockTicketStore is a mock implementation of TicketStore
type MockTicketStore struct {
	mock.Mock
}

func (m *MockTicketStore) GetByID(ctx context.Context, id string) (*models.TicketRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketRecord), args.Error(1)
}

func (m *MockTicketStore) Create(ctx context.Context, payload models.TicketPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *MockTicketStore) Update(ctx context.Context, id string, payload models.TicketPayload) error {
	args := m.Called(ctx, id, payload)
	return args.Error(0)
}

func (m *MockTicketStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestEventCollaborator_CreateBindsEvent(t *testing.T) {
	store := &MockTicketStore{}
	store.On("Create", mock.Anything, mock.MatchedBy(func(p models.TicketPayload) bool {
		return p.EventID == 7 && p.Name == "VIP"
	})).Return("srv-1", nil)

	c := NewEventCollaborator(store, 7, models.KindTicket)
	p := samplePayload(999, "VIP")

	id, err := c.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "srv-1", id)
	store.AssertExpectations(t)
}

func TestEventCollaborator_CreateRejectsOtherKind(t *testing.T) {
	store := &MockTicketStore{}
	c := NewEventCollaborator(store, 7, models.KindGroupTicket)

	_, err := c.Create(context.Background(), samplePayload(7, "VIP"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEventCollaborator_ScopesUpdateAndDelete(t *testing.T) {
	store := &MockTicketStore{}
	store.On("GetByID", mock.Anything, "mine").Return(&models.TicketRecord{ID: "mine", EventID: 7, Kind: models.KindTicket}, nil)
	store.On("GetByID", mock.Anything, "theirs").Return(&models.TicketRecord{ID: "theirs", EventID: 8, Kind: models.KindTicket}, nil)
	store.On("GetByID", mock.Anything, "group").Return(&models.TicketRecord{ID: "group", EventID: 7, Kind: models.KindGroupTicket}, nil)
	store.On("GetByID", mock.Anything, "gone").Return(nil, models.ErrTicketNotFound)
	store.On("Update", mock.Anything, "mine", mock.Anything).Return(nil)
	store.On("Delete", mock.Anything, "mine").Return(nil)

	c := NewEventCollaborator(store, 7, models.KindTicket)
	ctx := context.Background()

	assert.NoError(t, c.Update(ctx, "mine", samplePayload(7, "GA")))
	assert.NoError(t, c.Delete(ctx, "mine"))
	assert.ErrorIs(t, c.Update(ctx, "theirs", samplePayload(7, "GA")), models.ErrTicketNotFound)
	assert.ErrorIs(t, c.Delete(ctx, "group"), models.ErrTicketNotFound)
	assert.ErrorIs(t, c.Delete(ctx, "gone"), models.ErrTicketNotFound)

	store.AssertNumberOfCalls(t, "Update", 1)
	store.AssertNumberOfCalls(t, "Delete", 1)
}

func TestEventCollaborator_PropagatesStoreErrors(t *testing.T) {
	store := &MockTicketStore{}
	boom := errors.New("connection reset")
	store.On("GetByID", mock.Anything, "mine").Return(&models.TicketRecord{ID: "mine", EventID: 7, Kind: models.KindTicket}, nil)
	store.On("Delete", mock.Anything, "mine").Return(boom)

	c := NewEventCollaborator(store, 7, models.KindTicket)
	assert.ErrorIs(t, c.Delete(context.Background(), "mine"), boom)
}
