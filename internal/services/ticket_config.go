package services

import (
	"context"
	"fmt"

	"event-ticketing-console/internal/models"
	"event-ticketing-console/internal/reconcile"
	"event-ticketing-console/internal/repositories"

	"github.com/sirupsen/logrus"
)

// TicketConfigRepository interface for ticket category data operations
type TicketConfigRepository interface {
	repositories.TicketStore
	ListByEvent(ctx context.Context, eventID int, kind models.TicketKind) ([]models.TicketRecord, error)
	Catalog(ctx context.Context, eventID int) ([]models.TicketCategory, error)
}

// RejectedRecord is a working-set record that was not sent to the store
type RejectedRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// SyncResult is the outcome of saving an organizer's working set
type SyncResult struct {
	reconcile.Result
	Rejected  []RejectedRecord      `json:"rejected"`
	Refreshed []models.TicketRecord `json:"refreshed"`
}

// HasFailures reports whether any record was rejected or failed remotely
func (r *SyncResult) HasFailures() bool {
	return len(r.Failed) > 0 || len(r.Rejected) > 0
}

// TicketConfigService saves ticket and group ticket configuration
type TicketConfigService struct {
	repo   TicketConfigRepository
	driver *reconcile.Driver
	logger *logrus.Logger
}

// NewTicketConfigService creates a new ticket configuration service
func NewTicketConfigService(repo TicketConfigRepository, logger *logrus.Logger) *TicketConfigService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TicketConfigService{
		repo:   repo,
		driver: reconcile.NewDriver(logger),
		logger: logger,
	}
}

// Load returns the authoritative records of one kind for an event
func (s *TicketConfigService) Load(ctx context.Context, eventID int, kind models.TicketKind) ([]models.TicketRecord, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown ticket kind %q", models.ErrInvalidInput, kind)
	}

	records, err := s.repo.ListByEvent(ctx, eventID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s records: %w", kind, err)
	}

	return records, nil
}

// Sync moves the stored records of one kind to the organizer's working set.
// Records that cannot be resolved or fail validation are rejected locally and
// never sent. The remaining operations are applied in one batch, after which
// authoritative state is reloaded.
func (s *TicketConfigService) Sync(ctx context.Context, eventID int, kind models.TicketKind, current []models.TicketRecord, dirty reconcile.DirtySet) (*SyncResult, error) {
	original, err := s.Load(ctx, eventID, kind)
	if err != nil {
		return nil, err
	}

	working := make([]models.TicketRecord, len(current))
	for i, r := range current {
		r.EventID = eventID
		r.Kind = kind
		working[i] = r
	}

	diff := reconcile.Reconcile(original, working, reconcile.Options{
		Policy: reconcile.PolicyFor(kind),
		Dirty:  dirty,
	})
	diff = rejectInvalid(diff)

	log := s.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"kind":     kind,
		"create":   len(diff.ToCreate),
		"update":   len(diff.ToUpdate),
		"delete":   len(diff.ToDelete),
		"rejected": len(diff.Rejected),
	})
	log.Info("syncing ticket configuration")

	collaborator := repositories.NewEventCollaborator(s.repo, eventID, kind)
	result := &SyncResult{
		Result:   s.driver.Apply(ctx, diff, collaborator),
		Rejected: make([]RejectedRecord, 0, len(diff.Rejected)),
	}

	for _, r := range diff.Rejected {
		result.Rejected = append(result.Rejected, RejectedRecord{ID: r.Record.ID, Name: r.Record.Name, Error: r.Err.Error()})
	}

	refreshed, err := s.repo.ListByEvent(ctx, eventID, kind)
	if err != nil {
		log.WithError(err).Warn("failed to refresh ticket configuration after sync")
		return result, nil
	}
	result.Refreshed = refreshed

	return result, nil
}

// rejectInvalid moves changes whose payload fails validation into Rejected
func rejectInvalid(diff reconcile.Diff) reconcile.Diff {
	keep := func(changes []reconcile.Change) []reconcile.Change {
		valid := changes[:0:0]
		for _, c := range changes {
			if err := c.Payload.Validate(); err != nil {
				diff.Rejected = append(diff.Rejected, reconcile.Rejected{
					Record: c.Record,
					Err:    fmt.Errorf("%w: %v", models.ErrInvalidInput, err),
				})
				continue
			}
			valid = append(valid, c)
		}
		return valid
	}

	diff.ToUpdate = keep(diff.ToUpdate)
	diff.ToCreate = keep(diff.ToCreate)
	return diff
}
