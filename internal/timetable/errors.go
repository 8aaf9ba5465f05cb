package timetable

import (
	"errors"
	"fmt"
)

// Timetable errors.
var (
	ErrMalformedTimetable = errors.New("malformed timetable")
	ErrEntryNotFound      = errors.New("entry not found")
)

// MalformedTimetableError reports an entry set that cannot form a timetable tree.
// It indicates a partial fetch or inconsistent server state and is never recovered from.
type MalformedTimetableError struct {
	EntryID string
	Reason  string
}

func (e *MalformedTimetableError) Error() string {
	return fmt.Sprintf("%s: entry %s: %s", ErrMalformedTimetable, e.EntryID, e.Reason)
}

// Is reports whether target is ErrMalformedTimetable.
func (e *MalformedTimetableError) Is(target error) bool {
	return target == ErrMalformedTimetable
}

// EntryNotFoundError reports an identifier that did not resolve to an entry.
type EntryNotFoundError struct {
	Kind IDKind
	ID   string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrEntryNotFound, e.Kind.Label(), e.ID)
}

// Is reports whether target is ErrEntryNotFound.
func (e *EntryNotFoundError) Is(target error) bool {
	return target == ErrEntryNotFound
}
