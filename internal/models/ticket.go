package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"event-ticketing-console/internal/datetime"
)

// TicketKind distinguishes single ticket categories from group bundles
type TicketKind string

const (
	KindTicket      TicketKind = "ticket"
	KindGroupTicket TicketKind = "group_ticket"
)

// IsValid reports whether k is a known kind
func (k TicketKind) IsValid() bool {
	return k == KindTicket || k == KindGroupTicket
}

const localIDPrefix = "tmp-"

var localIDSeq atomic.Int64

// NewLocalID returns a synthetic id for a record that has not been persisted yet
func NewLocalID() string {
	return localIDPrefix + strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + strconv.FormatInt(localIDSeq.Add(1), 36)
}

// IsLocalID reports whether id was produced by NewLocalID
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

// WindowParts are the raw form fields of a window boundary being edited.
// They are parsed when the record is resolved, not when it is decoded.
type WindowParts struct {
	Date   string `json:"date"`
	Time   string `json:"time,omitempty"`
	Offset string `json:"offset"`
}

// Window is one sale or visibility boundary. Parts is set only when the
// organizer edited the boundary since the record was loaded.
type Window struct {
	Instant time.Time    `json:"instant"`
	Parts   *WindowParts `json:"parts,omitempty"`
}

// Resolve returns the canonical instant for the window, composing edited
// parts when present. An empty date means none was entered; an empty time
// means midnight.
func (w Window) Resolve() (time.Time, error) {
	if w.Parts == nil {
		return w.Instant, nil
	}

	var date *datetime.Date
	if strings.TrimSpace(w.Parts.Date) != "" {
		d, err := datetime.ParseDate(w.Parts.Date)
		if err != nil {
			return time.Time{}, err
		}
		date = &d
	}

	var clock *datetime.Clock
	if strings.TrimSpace(w.Parts.Time) != "" {
		c, err := datetime.ParseClock(w.Parts.Time)
		if err != nil {
			return time.Time{}, err
		}
		clock = &c
	}

	return datetime.Compose(date, clock, w.Parts.Offset)
}

// IsZero reports whether the window carries neither an instant nor parts
func (w Window) IsZero() bool {
	return w.Parts == nil && w.Instant.IsZero()
}

// TicketRecord is one sellable ticket category or group bundle as held in
// the organizer's working set
type TicketRecord struct {
	ID               string     `json:"id"`
	EventID          int        `json:"event_id"`
	Kind             TicketKind `json:"kind"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Price            int        `json:"price"` // minor currency unit
	Quantity         int        `json:"quantity"`
	MaxOrderQuantity int        `json:"max_order_quantity"`
	SalesStart       Window     `json:"sales_start"`
	SalesEnd         Window     `json:"sales_end"`
	TicketStart      *Window    `json:"ticket_start,omitempty"`
	TicketEnd        *Window    `json:"ticket_end,omitempty"`
	BundleQuantity   *int       `json:"bundle_quantity,omitempty"`
	Sold             int        `json:"sold"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Payload resolves every window and returns the persisted shape of the
// record. It fails with ErrInvalidInput when edited parts cannot be composed.
func (tr *TicketRecord) Payload() (TicketPayload, error) {
	p := TicketPayload{
		EventID:          tr.EventID,
		Kind:             tr.Kind,
		Name:             tr.Name,
		Description:      tr.Description,
		Price:            tr.Price,
		Quantity:         tr.Quantity,
		MaxOrderQuantity: tr.MaxOrderQuantity,
		BundleQuantity:   tr.BundleQuantity,
	}

	var err error
	if p.SalesStart, err = tr.SalesStart.Resolve(); err != nil {
		return TicketPayload{}, windowError("sales start", err)
	}
	if p.SalesEnd, err = tr.SalesEnd.Resolve(); err != nil {
		return TicketPayload{}, windowError("sales end", err)
	}
	if p.TicketStart, err = resolveOptional(tr.TicketStart); err != nil {
		return TicketPayload{}, windowError("ticket start", err)
	}
	if p.TicketEnd, err = resolveOptional(tr.TicketEnd); err != nil {
		return TicketPayload{}, windowError("ticket end", err)
	}

	return p, nil
}

// Available returns the number of unsold tickets
func (tr *TicketRecord) Available() int {
	available := tr.Quantity - tr.Sold
	if available < 0 {
		return 0
	}
	return available
}

// Category returns the catalog entry used to match imported recipients
func (tr *TicketRecord) Category() TicketCategory {
	return TicketCategory{
		ID:             tr.ID,
		Name:           tr.Name,
		RemainingQuota: tr.Available(),
	}
}

func resolveOptional(w *Window) (*time.Time, error) {
	if w == nil || w.IsZero() {
		return nil, nil
	}
	t, err := w.Resolve()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func windowError(field string, err error) error {
	return fmt.Errorf("%s: %w", field, err)
}

// TicketPayload is the shape sent to the ticket store on create and update
type TicketPayload struct {
	EventID          int        `json:"event_id"`
	Kind             TicketKind `json:"kind"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Price            int        `json:"price"`
	Quantity         int        `json:"quantity"`
	MaxOrderQuantity int        `json:"max_order_quantity"`
	SalesStart       time.Time  `json:"sales_start"`
	SalesEnd         time.Time  `json:"sales_end"`
	TicketStart      *time.Time `json:"ticket_start,omitempty"`
	TicketEnd        *time.Time `json:"ticket_end,omitempty"`
	BundleQuantity   *int       `json:"bundle_quantity,omitempty"`
}

// Validate validates the payload data
func (p *TicketPayload) Validate() error {
	if !p.Kind.IsValid() {
		return errors.New("invalid ticket kind")
	}

	if err := validateTicketName(p.Name); err != nil {
		return err
	}

	if err := validateTicketPrice(p.Price); err != nil {
		return err
	}

	if err := validateTicketQuantity(p.Quantity); err != nil {
		return err
	}

	if p.MaxOrderQuantity < 1 {
		return errors.New("max order quantity must be at least 1")
	}

	if err := validateWindow("sale", p.SalesStart, p.SalesEnd); err != nil {
		return err
	}

	if err := p.validateTicketWindow(); err != nil {
		return err
	}

	if err := p.validateBundle(); err != nil {
		return err
	}

	return validateTicketDescription(p.Description)
}

func (p *TicketPayload) validateTicketWindow() error {
	if p.TicketStart == nil && p.TicketEnd == nil {
		return nil
	}

	if p.Kind == KindGroupTicket {
		return errors.New("group tickets have no visibility window")
	}

	if p.TicketStart == nil || p.TicketEnd == nil {
		return errors.New("ticket window needs both start and end")
	}

	return validateWindow("ticket", *p.TicketStart, *p.TicketEnd)
}

func (p *TicketPayload) validateBundle() error {
	switch p.Kind {
	case KindGroupTicket:
		if p.BundleQuantity == nil || *p.BundleQuantity < 1 {
			return errors.New("bundle quantity must be at least 1")
		}
	case KindTicket:
		if p.BundleQuantity != nil {
			return errors.New("bundle quantity is only valid for group tickets")
		}
	}
	return nil
}

// validateTicketName validates a ticket category name
func validateTicketName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("ticket name is required")
	}

	if len(name) > 100 {
		return errors.New("ticket name must be less than 100 characters")
	}

	return nil
}

// validateTicketPrice validates a ticket price in minor units
func validateTicketPrice(price int) error {
	if price < 0 {
		return errors.New("ticket price cannot be negative")
	}

	if price > 1000000 {
		return errors.New("ticket price cannot exceed 1,000,000")
	}

	return nil
}

// validateTicketQuantity validates a ticket inventory size
func validateTicketQuantity(quantity int) error {
	if quantity < 0 {
		return errors.New("ticket quantity cannot be negative")
	}

	if quantity > 100000 {
		return errors.New("ticket quantity cannot exceed 100,000")
	}

	return nil
}

func validateWindow(label string, start, end time.Time) error {
	if start.IsZero() {
		return errors.New(label + " start date is required")
	}

	if end.IsZero() {
		return errors.New(label + " end date is required")
	}

	if !start.Before(end) {
		return errors.New(label + " start date must be before " + label + " end date")
	}

	return nil
}

func validateTicketDescription(description string) error {
	if len(description) > 1000 {
		return errors.New("ticket description must be less than 1000 characters")
	}

	return nil
}
