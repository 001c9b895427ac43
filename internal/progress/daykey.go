// Package progress computes streaks, consistency scores, heatmap grids and
// month tables from a snapshot of habit completions.
//
// Every function is pure: the evaluation day is always passed in, never read
// from the clock, so the same input yields the same output.
package progress

import (
	"errors"
	"fmt"
	"time"
)

// DayLayout is the textual form of a DayKey.
const DayLayout = "2006-01-02"

// ErrInvalidDate is matched by every *InvalidDateError via errors.Is.
var ErrInvalidDate = errors.New("invalid date")

// InvalidDateError reports a value that is not a well-formed calendar day.
type InvalidDateError struct {
	Value  string
	Layout string // expected form, YYYY-MM-DD when empty
}

func (e *InvalidDateError) Error() string {
	layout := e.Layout
	if layout == "" {
		layout = "YYYY-MM-DD"
	}
	return fmt.Sprintf("invalid date %q: expected %s", e.Value, layout)
}

// Is lets errors.Is(err, ErrInvalidDate) match.
func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// DayKey identifies a calendar day as YYYY-MM-DD. Keys sort lexically in
// chronological order.
type DayKey string

// ParseDayKey validates s as a calendar day. Out-of-range dates such as
// 2024-02-30 are rejected rather than normalized.
func ParseDayKey(s string) (DayKey, error) {
	if len(s) != len(DayLayout) {
		return "", &InvalidDateError{Value: s}
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", &InvalidDateError{Value: s}
	}
	if t.Format(DayLayout) != s {
		return "", &InvalidDateError{Value: s}
	}
	return DayKey(s), nil
}

// MustDayKey is ParseDayKey for literals in tests and fixtures.
func MustDayKey(s string) DayKey {
	d, err := ParseDayKey(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DayKeyOf truncates t to its calendar day in loc (UTC when loc is nil).
func DayKeyOf(t time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.UTC
	}
	return DayKey(t.In(loc).Format(DayLayout))
}

// String implements fmt.Stringer.
func (d DayKey) String() string {
	return string(d)
}

// Time returns midnight UTC of the day.
func (d DayKey) Time() (time.Time, error) {
	if len(d) != len(DayLayout) {
		return time.Time{}, &InvalidDateError{Value: string(d)}
	}
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: string(d)}
	}
	return t, nil
}

// Validate reports whether d is well formed.
func (d DayKey) Validate() error {
	_, err := ParseDayKey(string(d))
	return err
}

// Weekday returns the day of the week.
func (d DayKey) Weekday() (time.Weekday, error) {
	t, err := d.Time()
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// DaysBetween returns b - a in whole calendar days.
func DaysBetween(a, b DayKey) (int, error) {
	ta, err := a.Time()
	if err != nil {
		return 0, err
	}
	tb, err := b.Time()
	if err != nil {
		return 0, err
	}
	// Both are UTC midnights, so the difference is an exact multiple of 24h.
	return int(tb.Sub(ta) / (24 * time.Hour)), nil
}

// AddDays shifts d by n calendar days (n may be negative).
func AddDays(d DayKey, n int) (DayKey, error) {
	t, err := d.Time()
	if err != nil {
		return "", err
	}
	return DayKey(t.AddDate(0, 0, n).Format(DayLayout)), nil
}

// MondayOnOrBefore returns the Monday of the ISO week containing d.
func MondayOnOrBefore(d DayKey) (DayKey, error) {
	wd, err := d.Weekday()
	if err != nil {
		return "", err
	}
	return AddDays(d, -isoWeekdayIndex(wd))
}

// SundayOnOrAfter returns the Sunday closing the ISO week containing d.
func SundayOnOrAfter(d DayKey) (DayKey, error) {
	wd, err := d.Weekday()
	if err != nil {
		return "", err
	}
	return AddDays(d, 6-isoWeekdayIndex(wd))
}

// isoWeekdayIndex maps Monday..Sunday to 0..6.
func isoWeekdayIndex(wd time.Weekday) int {
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthLayout is the textual form of a Month.
const MonthLayout = "2006-01"

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil || len(s) != len(MonthLayout) {
		return Month{}, &InvalidDateError{Value: s, Layout: "YYYY-MM"}
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing d.
func MonthOf(d DayKey) (Month, error) {
	t, err := d.Time()
	if err != nil {
		return Month{}, err
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return DaysInMonth(m.Year, m.Month)
}

// First returns the first day of the month.
func (m Month) First() DayKey {
	return DayKey(time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(DayLayout))
}

// Last returns the last day of the month.
func (m Month) Last() DayKey {
	return DayKey(time.Date(m.Year, m.Month, m.Days(), 0, 0, 0, 0, time.UTC).Format(DayLayout))
}

// DaysInMonth handles leap years via time.Date normalization.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
