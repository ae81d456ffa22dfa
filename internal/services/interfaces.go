package services

import (
	"context"
	"io"

	"event-ticketing-console/internal/models"
	"event-ticketing-console/internal/reconcile"
)

// TicketConfigServiceInterface defines the interface for ticket configuration operations
type TicketConfigServiceInterface interface {
	Load(ctx context.Context, eventID int, kind models.TicketKind) ([]models.TicketRecord, error)
	Sync(ctx context.Context, eventID int, kind models.TicketKind, current []models.TicketRecord, dirty reconcile.DirtySet) (*SyncResult, error)
}

// InvitationServiceInterface defines the interface for invitation operations
type InvitationServiceInterface interface {
	Import(ctx context.Context, eventID int, filename string, file io.ReadSeeker, size int64, existing []models.RecipientRow) (*ImportResult, error)
	Send(ctx context.Context, eventID int, rows []models.RecipientRow) ([]models.Invitation, error)
	List(ctx context.Context, eventID int) ([]models.Invitation, error)
}

var (
	_ TicketConfigServiceInterface = (*TicketConfigService)(nil)
	_ InvitationServiceInterface   = (*InvitationService)(nil)
	_ StorageService               = (*R2Service)(nil)
	_ StorageService               = (*FallbackStorageService)(nil)
	_ StorageService               = (*StorageServiceWithFallback)(nil)
)
