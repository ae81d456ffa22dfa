package models

import (
	"strings"
	"time"
)

// UnresolvedTicketTypeName is shown for rows whose ticket type matched no category
const UnresolvedTicketTypeName = "-"

// TicketCategory is the catalog entry imported recipients are matched against
type TicketCategory struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	RemainingQuota int    `json:"remaining_quota"`
}

// RecipientRow is one staged invitation recipient. Rows are never persisted
// directly; they are consumed in bulk when invitations are sent.
type RecipientRow struct {
	RecipientName  string `json:"recipient_name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	PhoneNumber    string `json:"phone_number"`
	TicketTypeID   string `json:"ticket_type_id"`
	TicketTypeName string `json:"ticket_type_name"`
	TicketQty      string `json:"ticket_qty"`
}

// IsComplete reports whether the row may be submitted
func (r *RecipientRow) IsComplete() bool {
	return strings.TrimSpace(r.TicketTypeID) != "" && strings.TrimSpace(r.TicketQty) != ""
}

// Invitation is a sent invitation as stored by the platform
type Invitation struct {
	ID             string    `json:"id" db:"id"`
	EventID        int       `json:"event_id" db:"event_id"`
	RecipientName  string    `json:"recipient_name" db:"recipient_name"`
	Email          string    `json:"email" db:"email"`
	PhoneNumber    string    `json:"phone_number" db:"phone_number"`
	TicketTypeID   string    `json:"ticket_type_id" db:"ticket_type_id"`
	TicketQuantity int       `json:"ticket_quantity" db:"ticket_quantity"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
