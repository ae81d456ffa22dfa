package handlers

import (
	"context"
	"net/http"
	"strconv"

	"event-ticketing-console/internal/models"
	"event-ticketing-console/internal/reconcile"
	"event-ticketing-console/internal/services"

	"github.com/sirupsen/logrus"
)

// Auditor records organizer actions
type Auditor interface {
	LogAction(ctx context.Context, r *http.Request, eventID int, action string, details interface{}) error
}

// AuditReader pages through an event's audit log
type AuditReader interface {
	GetAuditLogs(ctx context.Context, eventID, page, limit int) ([]models.AuditLog, int, error)
}

// recordAudit logs an action without failing the request it belongs to
func recordAudit(r *http.Request, audit Auditor, logger *logrus.Logger, eventID int, action string, details interface{}) {
	if audit == nil {
		return
	}
	if err := audit.LogAction(r.Context(), r, eventID, action, details); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"event_id": eventID,
			"action":   action,
		}).Warn("failed to record audit log")
	}
}

func syncAuditDetails(result *services.SyncResult) map[string]int {
	details := map[string]int{
		"created":  0,
		"updated":  0,
		"deleted":  0,
		"failed":   len(result.Failed),
		"rejected": len(result.Rejected),
	}
	for _, o := range result.Succeeded {
		switch o.Op.Kind {
		case reconcile.OpCreate:
			details["created"]++
		case reconcile.OpUpdate:
			details["updated"]++
		case reconcile.OpDelete:
			details["deleted"]++
		}
	}
	return details
}

// AuditHandler serves an event's audit log
type AuditHandler struct {
	reader AuditReader
	logger *logrus.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(reader AuditReader, logger *logrus.Logger) *AuditHandler {
	return &AuditHandler{reader: reader, logger: logger}
}

// ListAuditLog returns a page of the event's audit log (?page=&limit=)
func (h *AuditHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, total, err := h.reader.GetAuditLogs(r.Context(), eventID, page, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   total,
		"page":    page,
	})
}
