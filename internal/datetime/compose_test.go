package datetime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	date := &Date{Year: 2024, Month: time.March, Day: 15}

	tests := []struct {
		name    string
		date    *Date
		clock   *Clock
		offset  string
		want    time.Time
		wantErr bool
	}{
		{
			name:   "jakarta evening",
			date:   date,
			clock:  &Clock{Hour: 19, Minute: 30},
			offset: "+07:00",
			want:   time.Date(2024, time.March, 15, 12, 30, 0, 0, time.UTC),
		},
		{
			name:   "missing clock is midnight",
			date:   date,
			offset: "+07:00",
			want:   time.Date(2024, time.March, 14, 17, 0, 0, 0, time.UTC),
		},
		{
			name:   "negative offset crosses day",
			date:   date,
			clock:  &Clock{Hour: 22, Minute: 0},
			offset: "-05:00",
			want:   time.Date(2024, time.March, 16, 3, 0, 0, 0, time.UTC),
		},
		{
			name:   "half hour offset",
			date:   date,
			clock:  &Clock{Hour: 10, Minute: 15},
			offset: "+05:30",
			want:   time.Date(2024, time.March, 15, 4, 45, 0, 0, time.UTC),
		},
		{
			name:    "missing date",
			clock:   &Clock{Hour: 10},
			offset:  "+07:00",
			wantErr: true,
		},
		{
			name:    "hour 24 rejected",
			date:    date,
			clock:   &Clock{Hour: 24, Minute: 0},
			offset:  "+07:00",
			wantErr: true,
		},
		{
			name:    "minute out of range",
			date:    date,
			clock:   &Clock{Hour: 10, Minute: 60},
			offset:  "+07:00",
			wantErr: true,
		},
		{
			name:    "impossible calendar date",
			date:    &Date{Year: 2024, Month: time.February, Day: 30},
			offset:  "+07:00",
			wantErr: true,
		},
		{
			name:    "malformed offset",
			date:    date,
			offset:  "0700",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compose(tt.date, tt.clock, tt.offset)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	offsets := []string{"+07:00", "-05:00", "+00:00", "+05:45", "-09:30", "+14:00"}
	dates := []Date{
		{Year: 2024, Month: time.January, Day: 1},
		{Year: 2024, Month: time.February, Day: 29},
		{Year: 2025, Month: time.December, Day: 31},
	}
	clocks := []Clock{{0, 0}, {9, 5}, {12, 30}, {23, 59}}

	for _, offset := range offsets {
		for _, d := range dates {
			for _, c := range clocks {
				d, c := d, c
				instant, err := Compose(&d, &c, offset)
				require.NoError(t, err)

				gotDate, gotClock, err := Decompose(instant, offset)
				require.NoError(t, err)
				assert.Equal(t, d, gotDate, "offset %s", offset)
				assert.Equal(t, c, gotClock, "offset %s", offset)
			}
		}
	}
}

func TestDecompose_DropsSeconds(t *testing.T) {
	instant := time.Date(2024, time.June, 1, 2, 3, 45, 999, time.UTC)

	date, clock, err := Decompose(instant, "+07:00")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.June, Day: 1}, date)
	assert.Equal(t, Clock{Hour: 9, Minute: 3}, clock)

	_, _, err = Decompose(instant, "GMT+7")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock(" 08:45 ")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 8, Minute: 45}, c)

	for _, bad := range []string{"24:00", "12:60", "8:45", "12", "ab:cd", ""} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestParseOffset(t *testing.T) {
	seconds, err := ParseOffset("+07:00")
	require.NoError(t, err)
	assert.Equal(t, 7*3600, seconds)

	seconds, err = ParseOffset("-03:30")
	require.NoError(t, err)
	assert.Equal(t, -(3*3600 + 30*60), seconds)

	assert.Equal(t, "-03:30", FormatOffset(seconds))
	assert.Equal(t, "+00:00", FormatOffset(0))

	for _, bad := range []string{"07:00", "+7:00", "+15:00", "+07:60", "Z"} {
		_, err := ParseOffset(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestDateClockJSON(t *testing.T) {
	type parts struct {
		Date Date  `json:"date"`
		Time Clock `json:"time"`
	}

	var p parts
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-08-17","time":"07:05"}`), &p))
	assert.Equal(t, Date{Year: 2024, Month: time.August, Day: 17}, p.Date)
	assert.Equal(t, Clock{Hour: 7, Minute: 5}, p.Time)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-08-17","time":"07:05"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"2024-02-30","time":"07:05"}`), &p))
}
