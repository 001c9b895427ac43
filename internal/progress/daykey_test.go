package progress

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain day", "2024-03-04", false},
		{"leap day", "2024-02-29", false},
		{"non leap year feb 29", "2023-02-29", true},
		{"feb 30", "2024-02-30", true},
		{"month 13", "2024-13-01", true},
		{"single digit month", "2024-3-04", true},
		{"timestamp", "2024-03-04T10:00:00Z", true},
		{"empty", "", true},
		{"garbage", "yesterday", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDayKey(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidDate))
				var dateErr *InvalidDateError
				require.ErrorAs(t, err, &dateErr)
				assert.Equal(t, tt.input, dateErr.Value)
				assert.Contains(t, err.Error(), "expected YYYY-MM-DD")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DayKey(tt.input), d)
		})
	}
}

func TestDayKeyOf_StableWithinDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	morning := time.Date(2024, 3, 4, 0, 0, 1, 0, loc)
	night := time.Date(2024, 3, 4, 23, 59, 59, 999, loc)

	assert.Equal(t, DayKey("2024-03-04"), DayKeyOf(morning, loc))
	assert.Equal(t, DayKeyOf(morning, loc), DayKeyOf(night, loc))
}

func TestDayKeyOf_UsesLocation(t *testing.T) {
	// 01:30 UTC on the 5th is still the 4th in UTC-3.
	instant := time.Date(2024, 3, 5, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, DayKey("2024-03-05"), DayKeyOf(instant, nil))
	assert.Equal(t, DayKey("2024-03-04"), DayKeyOf(instant, time.FixedZone("BRT", -3*60*60)))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b DayKey
		want int
	}{
		{"2024-01-01", "2024-01-10", 9},
		{"2024-01-10", "2024-01-01", -9},
		{"2024-02-28", "2024-03-01", 2},
		{"2023-02-28", "2023-03-01", 1},
		{"2023-12-31", "2024-01-01", 1},
		{"2024-03-04", "2024-03-04", 0},
		{"2024-01-01", "2025-01-01", 366},
	}

	for _, tt := range tests {
		t.Run(string(tt.a)+"_"+string(tt.b), func(t *testing.T) {
			got, err := DaysBetween(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaysBetween_InvalidKey(t *testing.T) {
	_, err := DaysBetween("2024-01-01", "2024-01-32")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = DaysBetween("nope", "2024-01-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		day  DayKey
		n    int
		want DayKey
	}{
		{"2024-02-28", 1, "2024-02-29"},
		{"2024-02-29", 1, "2024-03-01"},
		{"2023-02-28", 1, "2023-03-01"},
		{"2024-12-31", 1, "2025-01-01"},
		{"2024-03-01", -1, "2024-02-29"},
		{"2024-01-01", 365, "2024-12-31"},
		{"2024-03-04", 0, "2024-03-04"},
	}

	for _, tt := range tests {
		got, err := AddDays(tt.day, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s + %d", tt.day, tt.n)
	}
}

func TestMondayAndSunday(t *testing.T) {
	// 2024-03-06 is a Wednesday.
	mon, err := MondayOnOrBefore("2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, DayKey("2024-03-04"), mon)

	sun, err := SundayOnOrAfter("2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, DayKey("2024-03-10"), sun)

	// Sunday belongs to the week that started six days earlier.
	mon, err = MondayOnOrBefore("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, DayKey("2024-03-04"), mon)

	mon, err = MondayOnOrBefore("2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, DayKey("2024-03-04"), mon)
}

func TestMonth(t *testing.T) {
	m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 29, m.Days())
	assert.Equal(t, DayKey("2024-02-01"), m.First())
	assert.Equal(t, DayKey("2024-02-29"), m.Last())
	assert.Equal(t, "2024-02", m.String())

	m, err = ParseMonth("2023-02")
	require.NoError(t, err)
	assert.Equal(t, 28, m.Days())

	_, err = ParseMonth("2024-2")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseMonth("2024-00")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseMonth("2024-13")
	require.ErrorIs(t, err, ErrInvalidDate)
	assert.EqualError(t, err, `invalid date "2024-13": expected YYYY-MM`)
}
