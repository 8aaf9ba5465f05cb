// Package dateutil provides date parsing and day range utilities.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidDayKey      = errors.New("day key must be in YYYYMMDD format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
)

// Layouts used on the command line and in the timetable export.
const (
	DateLayout   = "2006-01-02"
	DayKeyLayout = "20060102"
)

// DateRange is an inclusive range of calendar days.
// A zero Start or End leaves that side open; the zero DateRange matches every day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a DateRange from two YYYY-MM-DD strings.
// Either may be empty to leave that side open.
// Returns an error if endDate is before startDate.
func NewDateRange(startDate, endDate string) (DateRange, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return DateRange{}, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return DateRange{}, err
	}

	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return DateRange{}, ErrEndDateBeforeStart
	}

	return DateRange{Start: start, End: end}, nil
}

// ParseDate parses a date string in YYYY-MM-DD format.
// An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseDayKey parses a YYYYMMDD day key as used by the timetable export.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.Parse(DayKeyLayout, key)
	if err != nil {
		return time.Time{}, ErrInvalidDayKey
	}
	return t, nil
}

// IsZero reports whether the range is open on both sides.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether the calendar day of t lies in the range.
// Only the date part of t, in its own location, is compared.
func (r DateRange) Contains(t time.Time) bool {
	day := civilDay(t)
	if !r.Start.IsZero() && day.Before(civilDay(r.Start)) {
		return false
	}
	if !r.End.IsZero() && day.After(civilDay(r.End)) {
		return false
	}
	return true
}

// String renders the range as "from..to", leaving open sides empty.
func (r DateRange) String() string {
	var from, to string
	if !r.Start.IsZero() {
		from = r.Start.Format(DateLayout)
	}
	if !r.End.IsZero() {
		to = r.End.Format(DateLayout)
	}
	if from == "" && to == "" {
		return "all days"
	}
	return from + ".." + to
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return civilDay(a).Equal(civilDay(b))
}

// civilDay maps the calendar date of t to midnight UTC so dates from
// different locations compare by their written date.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
