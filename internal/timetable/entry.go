// Package timetable defines the conference timetable domain types.
package timetable

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Kind represents the type of a timetable entry.
type Kind string

const (
	KindSessionBlock Kind = "session-block"
	KindContribution Kind = "contribution"
	KindBreak        Kind = "break"
)

// Valid returns true if the kind is a known value.
func (k Kind) Valid() bool {
	switch k {
	case KindSessionBlock, KindContribution, KindBreak:
		return true
	default:
		return false
	}
}

// Short returns a one-letter label for compact output.
func (k Kind) Short() string {
	switch k {
	case KindSessionBlock:
		return "S"
	case KindContribution:
		return "C"
	case KindBreak:
		return "B"
	default:
		return "?"
	}
}

// ParseKind parses an Indico export entryType ("Session", "Contribution", "Break").
func ParseKind(entryType string) (Kind, error) {
	switch strings.ToLower(entryType) {
	case "session", "session-block", "sessionblock":
		return KindSessionBlock, nil
	case "contribution":
		return KindContribution, nil
	case "break":
		return KindBreak, nil
	default:
		return "", fmt.Errorf("unknown entry type %q", entryType)
	}
}

// Entry is a snapshot of a scheduled timetable item.
// Entries are values: use WithTimes to derive a rescheduled copy.
type Entry struct {
	ID       string // Indico timetable id, e.g. "c4051"
	Kind     Kind
	Start    time.Time
	End      time.Time
	ParentID string // enclosing session block, empty for top level
	Title    string

	ContributionID string // empty for breaks and session blocks
	FriendlyID     string // id shown in the Indico UI
	Room           string
	Speakers       []string
}

// Interval returns the entry's time span.
func (e Entry) Interval() Interval {
	return Interval{Start: e.Start, End: e.End}
}

// Duration returns the entry's length.
func (e Entry) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// IsTopLevel returns true if the entry has no enclosing session block.
func (e Entry) IsTopLevel() bool {
	return e.ParentID == ""
}

// TimetableID returns the numeric part of the timetable id ("c4051" -> "4051").
// Indico's management endpoints address entries by this value.
func (e Entry) TimetableID() string {
	if len(e.ID) > 1 && (e.ID[0] < '0' || e.ID[0] > '9') {
		return e.ID[1:]
	}
	return e.ID
}

// WithTimes returns a copy of the entry rescheduled to [start, end).
func (e Entry) WithTimes(start, end time.Time) Entry {
	e.Start = start
	e.End = end
	e.Speakers = slices.Clone(e.Speakers)
	return e
}

// String returns a short human-readable label.
func (e Entry) String() string {
	return fmt.Sprintf("%s %q (%s-%s)", e.ID, e.Title,
		e.Start.Format("2006-01-02 15:04"), e.End.Format("15:04"))
}

// compareEntries orders entries by start time, then by id.
func compareEntries(a, b Entry) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// SortEntries sorts entries by start time, breaking ties by id.
func SortEntries(entries []Entry) {
	slices.SortFunc(entries, compareEntries)
}
