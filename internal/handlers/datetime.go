package handlers

import (
	"fmt"
	"net/http"
	"time"

	"event-ticketing-console/internal/datetime"
	"event-ticketing-console/internal/models"

	"github.com/go-playground/validator/v10"
)

// DateTimeHandler exposes date composition for the console's edit forms
type DateTimeHandler struct {
	validate      *validator.Validate
	displayOffset string
}

// NewDateTimeHandler creates a handler that decomposes instants in displayOffset by default
func NewDateTimeHandler(validate *validator.Validate, displayOffset string) *DateTimeHandler {
	return &DateTimeHandler{validate: validate, displayOffset: displayOffset}
}

// WindowPartsResponse is an instant split into form fields
type WindowPartsResponse struct {
	Date   datetime.Date  `json:"date"`
	Time   datetime.Clock `json:"time"`
	Offset string         `json:"offset"`
}

// Decompose splits ?instant= (RFC 3339) into date and time at ?offset=
func (h *DateTimeHandler) Decompose(w http.ResponseWriter, r *http.Request) {
	instant, err := time.Parse(time.RFC3339, r.URL.Query().Get("instant"))
	if err != nil {
		writeRequestError(w, fmt.Errorf("%w: instant must be RFC 3339", models.ErrInvalidInput))
		return
	}

	offset := r.URL.Query().Get("offset")
	if offset == "" {
		offset = h.displayOffset
	}

	date, clock, err := datetime.Decompose(instant, offset)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, WindowPartsResponse{Date: date, Time: clock, Offset: offset})
}

// Compose returns the UTC instant of a date, optional time and offset
func (h *DateTimeHandler) Compose(w http.ResponseWriter, r *http.Request) {
	var req models.ComposeRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	date, err := datetime.ParseDate(req.Date)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	var clock *datetime.Clock
	if req.Time != "" {
		c, err := datetime.ParseClock(req.Time)
		if err != nil {
			writeRequestError(w, err)
			return
		}
		clock = &c
	}

	instant, err := datetime.Compose(&date, clock, req.Offset)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]time.Time{"instant": instant})
}
