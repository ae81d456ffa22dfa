package invitations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"event-ticketing-console/internal/models"
)

// Column names expected in the header row of an upload
const (
	ColumnName           = "name"
	ColumnEmail          = "email"
	ColumnPhone          = "phone"
	ColumnTicketTypeName = "tickettypename"
	ColumnTicketQty      = "ticketqty"
)

const utf8BOM = "\ufeff"

// ParseCSV reads recipient rows from a CSV upload. Columns are located by
// header name, case-insensitively; unknown columns are ignored and missing
// ones read as empty. Blank lines are skipped.
func ParseCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: csv has no header row", models.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	if !hasAnyColumn(columns) {
		return nil, fmt.Errorf("%w: csv header has no recipient columns", models.ErrInvalidInput)
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
		}
		if isBlank(record) {
			continue
		}

		rows = append(rows, RawRow{
			Name:           field(record, columns, ColumnName),
			Email:          field(record, columns, ColumnEmail),
			Phone:          field(record, columns, ColumnPhone),
			TicketTypeName: field(record, columns, ColumnTicketTypeName),
			TicketQty:      field(record, columns, ColumnTicketQty),
		})
	}

	return rows, nil
}

func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func hasAnyColumn(columns map[string]int) bool {
	for _, name := range []string{ColumnName, ColumnEmail, ColumnPhone, ColumnTicketTypeName, ColumnTicketQty} {
		if _, ok := columns[name]; ok {
			return true
		}
	}
	return false
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
