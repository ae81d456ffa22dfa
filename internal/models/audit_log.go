package models

import (
	"encoding/json"
	"time"
)

// AuditLog records an organizer action taken through the console
type AuditLog struct {
	ID        string          `json:"id" db:"id"`
	EventID   int             `json:"event_id" db:"event_id"`
	Action    string          `json:"action" db:"action"`
	Details   json.RawMessage `json:"details" db:"details"`
	IPAddress string          `json:"ip_address" db:"ip_address"`
	UserAgent string          `json:"user_agent" db:"user_agent"`
	RequestID string          `json:"request_id" db:"request_id"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Console audit actions
const (
	AuditActionTicketSync       = "ticket_sync"
	AuditActionGroupTicketSync  = "group_ticket_sync"
	AuditActionRecipientsImport = "recipients_import"
	AuditActionInvitationsSend  = "invitations_send"
)

// SyncAction returns the audit action recorded for a sync of kind
func SyncAction(kind TicketKind) string {
	if kind == KindGroupTicket {
		return AuditActionGroupTicketSync
	}
	return AuditActionTicketSync
}
