package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"event-ticketing-console/internal/models"

	"github.com/google/uuid"
)

// AuditLogRepository handles audit log data operations
type AuditLogRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db, now: time.Now}
}

// Create stores an audit log entry, filling in its id and timestamp
func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = r.now()
	if len(entry.Details) == 0 {
		entry.Details = []byte("{}")
	}

	query := `
		INSERT INTO console_audit_log (id, event_id, action, details, ip_address, user_agent, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.EventID,
		entry.Action,
		[]byte(entry.Details),
		entry.IPAddress,
		entry.UserAgent,
		entry.RequestID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// ListByEvent retrieves a page of an event's audit log, newest first, with
// the total number of entries
func (r *AuditLogRepository) ListByEvent(ctx context.Context, eventID, limit, offset int) ([]models.AuditLog, int, error) {
	var totalCount int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM console_audit_log WHERE event_id = $1", eventID).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get audit log count: %w", err)
	}

	query := `
		SELECT id, event_id, action, details, ip_address, user_agent, request_id, created_at
		FROM console_audit_log
		WHERE event_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]models.AuditLog, 0)
	for rows.Next() {
		var (
			entry   models.AuditLog
			details []byte
		)
		err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.Action,
			&details,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.RequestID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entry.Details = details
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating audit logs: %w", err)
	}

	return entries, totalCount, nil
}
