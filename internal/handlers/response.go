package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"event-ticketing-console/internal/middleware"
	"event-ticketing-console/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every error answer
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string, details interface{}) {
	writeJSON(w, statusCode, ErrorResponse{Error: message, Details: details})
}

// writeServiceError maps a service error to its HTTP status. Unexpected
// errors are logged and reported without their cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *logrus.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"path":       r.URL.Path,
			"request_id": middleware.GetRequestID(r.Context()),
		}).WithError(err).Error("request failed")
		writeError(w, status, "internal server error", nil)
		return
	}

	writeError(w, status, err.Error(), nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrEventNotFound), errors.Is(err, models.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrIncompleteRecipients):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInsufficientStock), errors.Is(err, models.ErrTicketsSold):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// eventIDParam reads the event id from the URL
func eventIDParam(r *http.Request) (int, error) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventId"))
	if err != nil || eventID < 1 {
		return 0, fmt.Errorf("%w: invalid event ID", models.ErrInvalidInput)
	}
	return eventID, nil
}

// decodeJSON reads the request body into dst and validates it
func decodeJSON(r *http.Request, validate *validator.Validate, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return fmt.Errorf("invalid request body: %w", err)
		}
		return fmt.Errorf("%w: invalid request body: %v", models.ErrInvalidInput, err)
	}
	return validateStruct(r.Context(), validate, dst)
}

// validationError carries the per-field messages of a failed validation
type validationError struct {
	fields []string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("%s: %d invalid field(s)", models.ErrInvalidInput, len(e.fields))
}

func (e *validationError) Unwrap() error {
	return models.ErrInvalidInput
}

func validateStruct(ctx context.Context, validate *validator.Validate, payload interface{}) error {
	err := validate.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	messages := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		messages[i] = fmt.Sprintf("invalid '%s' with value '%v'", fe.Namespace(), fe.Value())
	}
	return &validationError{fields: messages}
}

// writeRequestError answers 400 for malformed or invalid requests
func writeRequestError(w http.ResponseWriter, err error) {
	var ve *validationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "validation failed", ve.fields)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error(), nil)
}
