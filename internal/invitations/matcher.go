// Package invitations turns uploaded recipient rows into staged invitation
// rows resolved against an event's ticket catalog.
package invitations

import (
	"strconv"
	"strings"

	"event-ticketing-console/internal/models"
)

// RawRow is one recipient row as read from an upload
type RawRow struct {
	Name           string
	Email          string
	Phone          string
	TicketTypeName string
	TicketQty      string
}

// NormalizePhone rewrites a phone number to its international form.
// Numbers already starting with + are kept, a leading 0 is replaced by the
// country code and anything else gets the code prepended.
func NormalizePhone(phone, defaultCountryCode string) string {
	phone = strings.TrimSpace(phone)
	switch {
	case phone == "":
		return ""
	case strings.HasPrefix(phone, "+"):
		return phone
	case strings.HasPrefix(phone, "0"):
		return defaultCountryCode + phone[1:]
	default:
		return defaultCountryCode + phone
	}
}

// Match resolves each row against catalog. A row never fails the whole
// batch: unknown ticket types leave the id and quantity empty, and an
// unparseable or over-quota quantity leaves only the quantity empty. The
// first catalog entry whose name equals the row's ticket type, ignoring
// case and surrounding space, wins.
func Match(rows []RawRow, catalog []models.TicketCategory, defaultCountryCode string) []models.RecipientRow {
	matched := make([]models.RecipientRow, 0, len(rows))
	for _, raw := range rows {
		row := models.RecipientRow{
			RecipientName:  strings.TrimSpace(raw.Name),
			Email:          strings.TrimSpace(raw.Email),
			PhoneNumber:    NormalizePhone(raw.Phone, defaultCountryCode),
			TicketTypeName: models.UnresolvedTicketTypeName,
		}

		category, ok := findCategory(raw.TicketTypeName, catalog)
		if ok {
			row.TicketTypeID = category.ID
			row.TicketTypeName = category.Name
			row.TicketQty = admitQuantity(raw.TicketQty, category.RemainingQuota)
		}

		matched = append(matched, row)
	}
	return matched
}

func findCategory(name string, catalog []models.TicketCategory) (models.TicketCategory, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.TicketCategory{}, false
	}
	for _, c := range catalog {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			return c, true
		}
	}
	return models.TicketCategory{}, false
}

// admitQuantity returns the quantity as a string, or empty when it is not a
// positive integer within quota. Quantities are never clamped.
func admitQuantity(raw string, quota int) string {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 || qty > quota {
		return ""
	}
	return strconv.Itoa(qty)
}

// Append returns a new list with matched appended to existing
func Append(existing, matched []models.RecipientRow) []models.RecipientRow {
	out := make([]models.RecipientRow, 0, len(existing)+len(matched))
	out = append(out, existing...)
	return append(out, matched...)
}

// Incomplete returns the indices of rows that block submission
func Incomplete(rows []models.RecipientRow) []int {
	idx := make([]int, 0)
	for i := range rows {
		if !rows[i].IsComplete() {
			idx = append(idx, i)
		}
	}
	return idx
}
