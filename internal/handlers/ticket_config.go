package handlers

import (
	"net/http"

	"event-ticketing-console/internal/models"
	"event-ticketing-console/internal/reconcile"
	"event-ticketing-console/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// DirtyStore tracks which group tickets the organizer has edited
type DirtyStore interface {
	Dirty(r *http.Request, eventID int) (reconcile.DirtySet, error)
	MarkDirty(w http.ResponseWriter, r *http.Request, eventID int, id string) error
	ClearDirty(w http.ResponseWriter, r *http.Request, eventID int, ids ...string) error
}

// TicketConfigHandler serves the ticket and group ticket configuration API
type TicketConfigHandler struct {
	service    services.TicketConfigServiceInterface
	workingSet DirtyStore
	audit      Auditor
	validate   *validator.Validate
	logger     *logrus.Logger
}

// NewTicketConfigHandler creates a new ticket configuration handler
func NewTicketConfigHandler(service services.TicketConfigServiceInterface, workingSet DirtyStore, audit Auditor, validate *validator.Validate, logger *logrus.Logger) *TicketConfigHandler {
	return &TicketConfigHandler{
		service:    service,
		workingSet: workingSet,
		audit:      audit,
		validate:   validate,
		logger:     logger,
	}
}

// ListTickets returns the event's ticket categories
func (h *TicketConfigHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.KindTicket)
}

// ListGroupTickets returns the event's group bundles
func (h *TicketConfigHandler) ListGroupTickets(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.KindGroupTicket)
}

// SyncTickets saves the organizer's ticket working set
func (h *TicketConfigHandler) SyncTickets(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, models.KindTicket)
}

// SyncGroupTickets saves the organizer's group ticket working set. Only
// bundles committed through CommitGroupTicketEdit are updated.
func (h *TicketConfigHandler) SyncGroupTickets(w http.ResponseWriter, r *http.Request) {
	h.sync(w, r, models.KindGroupTicket)
}

// CommitGroupTicketEdit marks an existing group ticket as edited
func (h *TicketConfigHandler) CommitGroupTicketEdit(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	ticketID := chi.URLParam(r, "ticketId")
	if ticketID == "" || models.IsLocalID(ticketID) {
		// New bundles are always created, there is nothing to mark
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.workingSet.MarkDirty(w, r, eventID, ticketID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TicketConfigHandler) list(w http.ResponseWriter, r *http.Request, kind models.TicketKind) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	records, err := h.service.Load(r.Context(), eventID, kind)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

func (h *TicketConfigHandler) sync(w http.ResponseWriter, r *http.Request, kind models.TicketKind) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	var req models.TicketSyncRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	var dirty reconcile.DirtySet
	if kind == models.KindGroupTicket {
		if dirty, err = h.workingSet.Dirty(r, eventID); err != nil {
			writeServiceError(w, r, h.logger, err)
			return
		}
	}

	result, err := h.service.Sync(r.Context(), eventID, kind, req.Current, dirty)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if kind == models.KindGroupTicket {
		if err := h.workingSet.ClearDirty(w, r, eventID, confirmedIDs(result)...); err != nil {
			h.logger.WithError(err).WithField("event_id", eventID).Warn("failed to clear working set marks")
		}
	}

	recordAudit(r, h.audit, h.logger, eventID, models.SyncAction(kind), syncAuditDetails(result))

	status := http.StatusOK
	if result.HasFailures() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

// confirmedIDs returns the existing record ids whose update or delete succeeded
func confirmedIDs(result *services.SyncResult) []string {
	ids := make([]string, 0, len(result.Succeeded))
	for _, o := range result.Succeeded {
		if o.Op.Kind != reconcile.OpCreate {
			ids = append(ids, o.Op.ID)
		}
	}
	return ids
}
