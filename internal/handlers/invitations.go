package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"event-ticketing-console/internal/models"
	"event-ticketing-console/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// MaxImportSize bounds the size of an uploaded recipient file
const MaxImportSize = 5 << 20

// InvitationHandler serves recipient import and invitation sending
type InvitationHandler struct {
	service  services.InvitationServiceInterface
	audit    Auditor
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(service services.InvitationServiceInterface, audit Auditor, validate *validator.Validate, logger *logrus.Logger) *InvitationHandler {
	return &InvitationHandler{
		service:  service,
		audit:    audit,
		validate: validate,
		logger:   logger,
	}
}

// ImportRecipients stages the rows of an uploaded CSV file. The optional
// "existing" form field carries the rows already staged, as JSON.
func (h *InvitationHandler) ImportRecipients(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImportSize+1<<20)
	if err := r.ParseMultipartForm(MaxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required", nil)
		return
	}
	defer file.Close()

	if header.Size > MaxImportSize {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", MaxImportSize), nil)
		return
	}

	var existing []models.RecipientRow
	if raw := r.FormValue("existing"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			writeError(w, http.StatusBadRequest, "invalid existing rows", err.Error())
			return
		}
	}

	result, err := h.service.Import(r.Context(), eventID, header.Filename, file, header.Size, existing)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	details := map[string]interface{}{"filename": header.Filename, "imported": result.Imported, "incomplete": len(result.Incomplete)}
	if result.Archive != nil {
		details["archive_key"] = result.Archive.Key
	}
	recordAudit(r, h.audit, h.logger, eventID, models.AuditActionRecipientsImport, details)

	writeJSON(w, http.StatusOK, result)
}

// SendInvitations sends every staged row. Nothing is sent while a row is
// incomplete.
func (h *InvitationHandler) SendInvitations(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	var req models.InvitationSendRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	sent, err := h.service.Send(r.Context(), eventID, req.Recipients)
	if err != nil {
		var incomplete *models.IncompleteRecipientsError
		if errors.As(err, &incomplete) {
			writeError(w, http.StatusUnprocessableEntity, "recipient list has incomplete rows",
				map[string]interface{}{"incomplete": incomplete.Indices})
			return
		}
		writeServiceError(w, r, h.logger, err)
		return
	}

	recordAudit(r, h.audit, h.logger, eventID, models.AuditActionInvitationsSend, map[string]int{"sent": len(sent)})

	writeJSON(w, http.StatusCreated, map[string]interface{}{"invitations": sent})
}

// ListInvitations returns the invitations sent for an event
func (h *InvitationHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDParam(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	invitations, err := h.service.List(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invitations": invitations})
}
