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

// TicketRepository persists ticket categories and group bundles
type TicketRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db, now: time.Now}
}

const ticketColumns = `id, event_id, kind, name, description, price, quantity, sold, max_order_quantity,
	sales_start, sales_end, ticket_start, ticket_end, bundle_quantity, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*models.TicketRecord, error) {
	var (
		tr                     models.TicketRecord
		salesStart, salesEnd   time.Time
		ticketStart, ticketEnd sql.NullTime
		bundle                 sql.NullInt64
	)

	err := row.Scan(
		&tr.ID,
		&tr.EventID,
		&tr.Kind,
		&tr.Name,
		&tr.Description,
		&tr.Price,
		&tr.Quantity,
		&tr.Sold,
		&tr.MaxOrderQuantity,
		&salesStart,
		&salesEnd,
		&ticketStart,
		&ticketEnd,
		&bundle,
		&tr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	tr.SalesStart = models.Window{Instant: salesStart.UTC()}
	tr.SalesEnd = models.Window{Instant: salesEnd.UTC()}
	if ticketStart.Valid {
		tr.TicketStart = &models.Window{Instant: ticketStart.Time.UTC()}
	}
	if ticketEnd.Valid {
		tr.TicketEnd = &models.Window{Instant: ticketEnd.Time.UTC()}
	}
	if bundle.Valid {
		v := int(bundle.Int64)
		tr.BundleQuantity = &v
	}

	return &tr, nil
}

// ListByEvent retrieves the categories of one kind for an event
func (r *TicketRepository) ListByEvent(ctx context.Context, eventID int, kind models.TicketKind) ([]models.TicketRecord, error) {
	query := `SELECT ` + ticketColumns + `
		FROM ticket_categories
		WHERE event_id = $1 AND kind = $2
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket categories: %w", err)
	}
	defer rows.Close()

	records := make([]models.TicketRecord, 0)
	for rows.Next() {
		tr, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket category: %w", err)
		}
		records = append(records, *tr)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket categories: %w", err)
	}

	return records, nil
}

// GetByID retrieves a single category
func (r *TicketRepository) GetByID(ctx context.Context, id string) (*models.TicketRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTicketNotFound, id)
	}

	query := `SELECT ` + ticketColumns + ` FROM ticket_categories WHERE id = $1`

	tr, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrTicketNotFound, id)
		}
		return nil, fmt.Errorf("failed to get ticket category: %w", err)
	}

	return tr, nil
}

// Create inserts a category and returns its server id
func (r *TicketRepository) Create(ctx context.Context, payload models.TicketPayload) (string, error) {
	if err := payload.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	id := uuid.NewString()
	now := r.now()

	query := `
		INSERT INTO ticket_categories (id, event_id, kind, name, description, price, quantity, sold,
			max_order_quantity, sales_start, sales_end, ticket_start, ticket_end, bundle_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10, $11, $12, $13, $14, $14)`

	_, err := r.db.ExecContext(ctx, query,
		id,
		payload.EventID,
		payload.Kind,
		payload.Name,
		payload.Description,
		payload.Price,
		payload.Quantity,
		payload.MaxOrderQuantity,
		payload.SalesStart,
		payload.SalesEnd,
		nullTime(payload.TicketStart),
		nullTime(payload.TicketEnd),
		nullInt(payload.BundleQuantity),
		now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create ticket category: %w", err)
	}

	return id, nil
}

// Update overwrites a category. The quantity cannot drop below tickets sold.
func (r *TicketRepository) Update(ctx context.Context, id string, payload models.TicketPayload) error {
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if payload.Quantity < existing.Sold {
		return fmt.Errorf("%w: cannot reduce quantity below sold tickets (%d)", models.ErrInsufficientStock, existing.Sold)
	}

	query := `
		UPDATE ticket_categories
		SET name = $2, description = $3, price = $4, quantity = $5, max_order_quantity = $6,
			sales_start = $7, sales_end = $8, ticket_start = $9, ticket_end = $10, bundle_quantity = $11,
			updated_at = $12
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		id,
		payload.Name,
		payload.Description,
		payload.Price,
		payload.Quantity,
		payload.MaxOrderQuantity,
		payload.SalesStart,
		payload.SalesEnd,
		nullTime(payload.TicketStart),
		nullTime(payload.TicketEnd),
		nullInt(payload.BundleQuantity),
		r.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket category: %w", err)
	}

	return requireAffected(result, id)
}

// Delete removes a category that has no sold tickets
func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if existing.Sold > 0 {
		return fmt.Errorf("%w: %d sold", models.ErrTicketsSold, existing.Sold)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM ticket_categories WHERE id = $1 AND sold = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket category: %w", err)
	}

	return requireAffected(result, id)
}

// Catalog returns every category of an event with its remaining quota
func (r *TicketRepository) Catalog(ctx context.Context, eventID int) ([]models.TicketCategory, error) {
	query := `
		SELECT id, name, GREATEST(quantity - sold, 0)
		FROM ticket_categories
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket catalog: %w", err)
	}
	defer rows.Close()

	catalog := make([]models.TicketCategory, 0)
	for rows.Next() {
		var c models.TicketCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.RemainingQuota); err != nil {
			return nil, fmt.Errorf("failed to scan ticket catalog: %w", err)
		}
		catalog = append(catalog, c)
	}

	return catalog, rows.Err()
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrTicketNotFound, id)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
