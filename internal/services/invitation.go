package services

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"event-ticketing-console/internal/invitations"
	"event-ticketing-console/internal/models"

	"github.com/sirupsen/logrus"
)

// InvitationRepository interface for invitation data operations
type InvitationRepository interface {
	CreateBatch(ctx context.Context, eventID int, invitations []models.Invitation) ([]models.Invitation, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Invitation, error)
}

// CatalogSource provides the ticket categories recipients are matched against
type CatalogSource interface {
	Catalog(ctx context.Context, eventID int) ([]models.TicketCategory, error)
}

// ImportResult is the staging list after an upload
type ImportResult struct {
	Rows       []models.RecipientRow `json:"rows"`
	Incomplete []int                 `json:"incomplete"`
	Imported   int                   `json:"imported"`
	Archive    *ImportArchive        `json:"archive,omitempty"`
}

// InvitationService stages uploaded recipients and sends invitations
type InvitationService struct {
	repo               InvitationRepository
	catalog            CatalogSource
	storage            StorageService
	defaultCountryCode string
	logger             *logrus.Logger
}

// NewInvitationService creates a new invitation service. storage may be nil,
// in which case uploads are not archived.
func NewInvitationService(repo InvitationRepository, catalog CatalogSource, storage StorageService, defaultCountryCode string, logger *logrus.Logger) *InvitationService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &InvitationService{
		repo:               repo,
		catalog:            catalog,
		storage:            storage,
		defaultCountryCode: defaultCountryCode,
		logger:             logger,
	}
}

// Import parses an uploaded recipient file, matches it against the event's
// catalog and appends the result to the existing staging rows. Archiving the
// upload is best effort.
func (s *InvitationService) Import(ctx context.Context, eventID int, filename string, file io.ReadSeeker, size int64, existing []models.RecipientRow) (*ImportResult, error) {
	log := s.logger.WithFields(logrus.Fields{"event_id": eventID, "filename": filename})

	archive := s.archive(ctx, eventID, filename, file, size, log)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}

	raw, err := invitations.ParseCSV(file)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalog.Catalog(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket catalog: %w", err)
	}

	matched := invitations.Match(raw, catalog, s.defaultCountryCode)
	rows := invitations.Append(existing, matched)
	incomplete := invitations.Incomplete(rows)

	log.WithFields(logrus.Fields{
		"imported":   len(matched),
		"staged":     len(rows),
		"incomplete": len(incomplete),
	}).Info("recipient file imported")

	return &ImportResult{
		Rows:       rows,
		Incomplete: incomplete,
		Imported:   len(matched),
		Archive:    archive,
	}, nil
}

func (s *InvitationService) archive(ctx context.Context, eventID int, filename string, file io.ReadSeeker, size int64, log *logrus.Entry) *ImportArchive {
	if s.storage == nil {
		return nil
	}

	key := ImportArchiveKey(eventID, filename)
	url, err := s.storage.Upload(ctx, key, file, "text/csv", size)
	if err != nil {
		log.WithError(err).Warn("failed to archive recipient file")
		return nil
	}

	return &ImportArchive{Key: key, URL: url, Size: size}
}

// Send persists an invitation for every staged row. It refuses the whole
// list while any row is incomplete, reporting the offending indices.
func (s *InvitationService) Send(ctx context.Context, eventID int, rows []models.RecipientRow) ([]models.Invitation, error) {
	if incomplete := invitations.Incomplete(rows); len(incomplete) > 0 {
		return nil, &models.IncompleteRecipientsError{Indices: incomplete}
	}

	batch := make([]models.Invitation, 0, len(rows))
	requested := make(map[string]int)
	for i, row := range rows {
		qty, err := strconv.Atoi(row.TicketQty)
		if err != nil || qty < 1 {
			return nil, &models.IncompleteRecipientsError{Indices: []int{i}}
		}
		requested[row.TicketTypeID] += qty

		batch = append(batch, models.Invitation{
			EventID:        eventID,
			RecipientName:  row.RecipientName,
			Email:          row.Email,
			PhoneNumber:    row.PhoneNumber,
			TicketTypeID:   row.TicketTypeID,
			TicketQuantity: qty,
		})
	}

	if err := s.checkQuota(ctx, eventID, requested); err != nil {
		return nil, err
	}

	stored, err := s.repo.CreateBatch(ctx, eventID, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to send invitations: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"event_id": eventID, "sent": len(stored)}).Info("invitations sent")

	return stored, nil
}

// checkQuota verifies the requested quantities against the live catalog.
// The repository repeats the check under lock.
func (s *InvitationService) checkQuota(ctx context.Context, eventID int, requested map[string]int) error {
	catalog, err := s.catalog.Catalog(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to load ticket catalog: %w", err)
	}

	remaining := make(map[string]models.TicketCategory, len(catalog))
	for _, c := range catalog {
		remaining[c.ID] = c
	}

	for id, qty := range requested {
		c, ok := remaining[id]
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrTicketNotFound, id)
		}
		if qty > c.RemainingQuota {
			return fmt.Errorf("%w: %s has %d remaining, %d requested", models.ErrInsufficientStock, c.Name, c.RemainingQuota, qty)
		}
	}

	return nil
}

// List returns the invitations already sent for an event
func (s *InvitationService) List(ctx context.Context, eventID int) ([]models.Invitation, error) {
	return s.repo.ListByEvent(ctx, eventID)
}
