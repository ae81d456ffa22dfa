// Package datetime combines the calendar date, clock time and UTC offset
// that organizers edit separately into the canonical instant stored on
// ticket windows, and splits instants back into those parts.
package datetime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInput is returned for malformed dates, clock times and offsets
var ErrInvalidInput = errors.New("invalid input")

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	maxOffsetHours = 14
)

// Date is a calendar day without a time component
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Clock is a time of day with minute precision
type Clock struct {
	Hour   int
	Minute int
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q", ErrInvalidInput, s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// ParseClock parses an HH:MM time of day. 24:00 is rejected.
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return Clock{}, fmt.Errorf("%w: time %q", ErrInvalidInput, s)
	}
	hour, herr := strconv.Atoi(hh)
	minute, merr := strconv.Atoi(mm)
	if herr != nil || merr != nil {
		return Clock{}, fmt.Errorf("%w: time %q", ErrInvalidInput, s)
	}
	c := Clock{Hour: hour, Minute: minute}
	if err := c.validate(); err != nil {
		return Clock{}, err
	}
	return c, nil
}

// ParseOffset parses a signed ±HH:MM offset and returns it in seconds east of UTC
func ParseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, fmt.Errorf("%w: utc offset %q", ErrInvalidInput, s)
	}
	hours, herr := strconv.Atoi(s[1:3])
	minutes, merr := strconv.Atoi(s[4:6])
	if herr != nil || merr != nil || hours > maxOffsetHours || minutes > 59 {
		return 0, fmt.Errorf("%w: utc offset %q", ErrInvalidInput, s)
	}
	seconds := hours*3600 + minutes*60
	if s[0] == '-' {
		seconds = -seconds
	}
	return seconds, nil
}

// FormatOffset renders an offset in seconds east of UTC as ±HH:MM
func FormatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}

// Compose interprets date and clock as wall time in the zone described by
// utcOffset and returns the absolute instant in UTC. A nil clock means 00:00.
func Compose(date *Date, clock *Clock, utcOffset string) (time.Time, error) {
	if date == nil {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := date.validate(); err != nil {
		return time.Time{}, err
	}

	c := Clock{}
	if clock != nil {
		if err := clock.validate(); err != nil {
			return time.Time{}, err
		}
		c = *clock
	}

	offset, err := ParseOffset(utcOffset)
	if err != nil {
		return time.Time{}, err
	}

	zone := time.FixedZone(FormatOffset(offset), offset)
	return time.Date(date.Year, date.Month, date.Day, c.Hour, c.Minute, 0, 0, zone).UTC(), nil
}

// Decompose splits an instant into the date and clock seen at displayOffset.
// Seconds and sub-second precision are dropped.
func Decompose(instant time.Time, displayOffset string) (Date, Clock, error) {
	offset, err := ParseOffset(displayOffset)
	if err != nil {
		return Date{}, Clock{}, err
	}

	local := instant.In(time.FixedZone(FormatOffset(offset), offset))
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()},
		Clock{Hour: local.Hour(), Minute: local.Minute()},
		nil
}

func (d Date) validate() error {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return fmt.Errorf("%w: date %s", ErrInvalidInput, d)
	}
	// time.Date normalises overflow, so a day that rolls into the next
	// month is not a real calendar date.
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	if t.Day() != d.Day || t.Month() != d.Month {
		return fmt.Errorf("%w: date %s", ErrInvalidInput, d)
	}
	return nil
}

func (c Clock) validate() error {
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: time %02d:%02d", ErrInvalidInput, c.Hour, c.Minute)
	}
	return nil
}

// String returns the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// String returns the clock as HH:MM
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
