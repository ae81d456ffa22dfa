package models

import (
	"errors"
	"fmt"

	"event-ticketing-console/internal/datetime"
)

// Common errors used throughout the application
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrInvalidInput          = datetime.ErrInvalidInput
	ErrRemoteOperationFailed = errors.New("remote operation failed")
	ErrIncompleteRecipients  = errors.New("recipient list has incomplete rows")
	ErrInsufficientStock     = errors.New("insufficient ticket stock")
	ErrTicketsSold           = errors.New("ticket category has sold tickets")
)

// IncompleteRecipientsError lists the staged rows that block sending
type IncompleteRecipientsError struct {
	Indices []int
}

func (e *IncompleteRecipientsError) Error() string {
	return fmt.Sprintf("%s: %d row(s)", ErrIncompleteRecipients, len(e.Indices))
}

func (e *IncompleteRecipientsError) Unwrap() error {
	return ErrIncompleteRecipients
}
