package swap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javiermolinar/indico/internal/timetable"
)

// Planning errors. Nothing has been sent to the server when one of these is returned.
var (
	ErrEntryNotFound   = timetable.ErrEntryNotFound
	ErrSwapConflict    = errors.New("swap conflicts with another entry")
	ErrSwapContainment = errors.New("swap moves entry outside its session")
	ErrUnsupportedSwap = errors.New("unsupported swap")
)

// Execution errors.
var (
	ErrUnvalidatedPlan = errors.New("plan was not produced by the planner")
	ErrPersistFailed   = errors.New("persisting entry failed")
	ErrSwapAborted     = errors.New("swap aborted")
	ErrPartialSwap     = errors.New("swap partially applied")
	ErrRollbackFailed  = errors.New("rollback failed")
)

// EntryNotFoundError reports a swap operand missing from the timetable.
type EntryNotFoundError = timetable.EntryNotFoundError

// SwapConflictError reports that a proposed slot collides with another entry.
type SwapConflictError struct {
	Entry    timetable.Entry // entry being moved, original snapshot
	Proposed timetable.Interval
	Conflict timetable.Entry // the entry it would collide with
}

func (e *SwapConflictError) Error() string {
	return fmt.Sprintf("%s: %s at %s would overlap %s",
		ErrSwapConflict, e.Entry.ID, formatInterval(e.Proposed), e.Conflict)
}

// Is reports whether target is ErrSwapConflict.
func (e *SwapConflictError) Is(target error) bool {
	return target == ErrSwapConflict
}

// SwapContainmentError reports that a proposed slot does not fit a session block.
type SwapContainmentError struct {
	Entry    timetable.Entry
	Proposed timetable.Interval
	Parent   timetable.Entry
}

func (e *SwapContainmentError) Error() string {
	return fmt.Sprintf("%s: %s at %s does not fit in session %s",
		ErrSwapContainment, e.Entry.ID, formatInterval(e.Proposed), e.Parent)
}

// Is reports whether target is ErrSwapContainment.
func (e *SwapContainmentError) Is(target error) bool {
	return target == ErrSwapContainment
}

// UnsupportedSwapError reports a swap the planner refuses to express,
// such as one that would require changing an entry's session.
type UnsupportedSwapError struct {
	Entry  timetable.Entry
	Reason string
}

func (e *UnsupportedSwapError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrUnsupportedSwap, e.Entry.ID, e.Reason)
}

// Is reports whether target is ErrUnsupportedSwap.
func (e *UnsupportedSwapError) Is(target error) bool {
	return target == ErrUnsupportedSwap
}

// MutationError reports that the first mutation failed. The timetable is unchanged.
type MutationError struct {
	Mutation Mutation
	Err      error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistFailed, e.Mutation.ID(), e.Err)
}

// Unwrap returns the sentinel and the persistence error.
func (e *MutationError) Unwrap() []error {
	return []error{ErrPersistFailed, e.Err}
}

// AbortedError reports that the deadline elapsed before any mutation was sent.
type AbortedError struct {
	Cause error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("%s before any change: %v", ErrSwapAborted, e.Cause)
}

// Unwrap returns the sentinel and the context error.
func (e *AbortedError) Unwrap() []error {
	return []error{ErrSwapAborted, e.Cause}
}

// PartialSwapError reports that the first mutation was applied but the second was not.
type PartialSwapError struct {
	Applied           Mutation
	Failed            Mutation
	Cause             error
	RollbackAttempted bool
	RolledBack        bool
}

func (e *PartialSwapError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: moved %s to %s, but moving %s to %s failed: %v",
		ErrPartialSwap,
		e.Applied.ID(), formatInterval(e.Applied.NewInterval()),
		e.Failed.ID(), formatInterval(e.Failed.NewInterval()),
		e.Cause)
	switch {
	case e.RolledBack:
		fmt.Fprintf(&b, "; %s restored to %s", e.Applied.ID(), formatInterval(e.Applied.Entry.Interval()))
	case !e.RollbackAttempted:
		fmt.Fprintf(&b, "; no rollback attempted, %s must be restored to %s manually",
			e.Applied.ID(), formatInterval(e.Applied.Entry.Interval()))
	}
	return b.String()
}

// Is reports whether target is ErrPartialSwap.
func (e *PartialSwapError) Is(target error) bool {
	return target == ErrPartialSwap
}

// Unwrap returns the error that stopped the second mutation.
func (e *PartialSwapError) Unwrap() error {
	return e.Cause
}

// RollbackFailedError reports a partial swap whose compensating rollback also failed.
// The timetable is left inconsistent and needs manual repair.
type RollbackFailedError struct {
	Partial *PartialSwapError
	Err     error
}

func (e *RollbackFailedError) Error() string {
	return fmt.Sprintf("%s: %v; restoring %s to %s failed: %v",
		ErrRollbackFailed, e.Partial, e.Partial.Applied.ID(),
		formatInterval(e.Partial.Applied.Entry.Interval()), e.Err)
}

// Is reports whether target is ErrRollbackFailed.
func (e *RollbackFailedError) Is(target error) bool {
	return target == ErrRollbackFailed
}

// Unwrap returns the partial swap and the rollback error.
func (e *RollbackFailedError) Unwrap() []error {
	return []error{e.Partial, e.Err}
}

func formatInterval(i timetable.Interval) string {
	if i.Start.YearDay() == i.End.YearDay() && i.Start.Year() == i.End.Year() {
		return i.Start.Format("2006-01-02 15:04") + "-" + i.End.Format("15:04")
	}
	return i.Start.Format("2006-01-02 15:04") + "-" + i.End.Format("2006-01-02 15:04")
}
