package repositories

import (
	"context"
	"fmt"

	"event-ticketing-console/internal/models"
)

// TicketStore is the part of TicketRepository an EventCollaborator needs
type TicketStore interface {
	GetByID(ctx context.Context, id string) (*models.TicketRecord, error)
	Create(ctx context.Context, payload models.TicketPayload) (string, error)
	Update(ctx context.Context, id string, payload models.TicketPayload) error
	Delete(ctx context.Context, id string) error
}

// EventCollaborator scopes a TicketStore to the records of one kind of one
// event. Calls touching a record outside that scope fail with
// ErrTicketNotFound.
type EventCollaborator struct {
	store   TicketStore
	eventID int
	kind    models.TicketKind
}

// NewEventCollaborator creates a collaborator for eventID and kind
func NewEventCollaborator(store TicketStore, eventID int, kind models.TicketKind) *EventCollaborator {
	return &EventCollaborator{store: store, eventID: eventID, kind: kind}
}

func (c *EventCollaborator) Create(ctx context.Context, payload models.TicketPayload) (string, error) {
	if payload.Kind != c.kind {
		return "", fmt.Errorf("%w: expected kind %s, got %s", models.ErrInvalidInput, c.kind, payload.Kind)
	}
	payload.EventID = c.eventID
	return c.store.Create(ctx, payload)
}

func (c *EventCollaborator) Update(ctx context.Context, id string, payload models.TicketPayload) error {
	if err := c.owns(ctx, id); err != nil {
		return err
	}
	payload.EventID = c.eventID
	payload.Kind = c.kind
	return c.store.Update(ctx, id, payload)
}

func (c *EventCollaborator) Delete(ctx context.Context, id string) error {
	if err := c.owns(ctx, id); err != nil {
		return err
	}
	return c.store.Delete(ctx, id)
}

func (c *EventCollaborator) owns(ctx context.Context, id string) error {
	existing, err := c.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.EventID != c.eventID || existing.Kind != c.kind {
		return fmt.Errorf("%w: %s", models.ErrTicketNotFound, id)
	}
	return nil
}
