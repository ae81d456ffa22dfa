package models

// TicketSyncRequest carries the organizer's edited working set
type TicketSyncRequest struct {
	Current []TicketRecord `json:"current" validate:"dive"`
}

// ComposeRequest asks for the canonical instant of a date, time and offset
type ComposeRequest struct {
	Date   string `json:"date" validate:"required"`
	Time   string `json:"time"`
	Offset string `json:"offset" validate:"required"`
}

// InvitationSendRequest submits staged recipients for an event
type InvitationSendRequest struct {
	Recipients []RecipientRow `json:"recipients" validate:"required,min=1,dive"`
}
