// Package history defines the journal of executed swaps.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Journal errors.
var (
	ErrRecordNotFound = errors.New("journal record not found")
	ErrInvalidStatus  = errors.New("invalid journal status")
	ErrMissingID      = errors.New("journal record id is required")
)

// Status is the outcome of one swap execution.
type Status string

const (
	StatusApplied        Status = "applied"         // both mutations persisted
	StatusRolledBack     Status = "rolled_back"     // second failed, first restored
	StatusRollbackFailed Status = "rollback_failed" // second failed, first could not be restored
	StatusPartial        Status = "partial"         // deadline hit after the first mutation
	StatusAborted        Status = "aborted"         // deadline hit before any mutation
	StatusFailed         Status = "failed"          // first mutation failed, nothing changed
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusRolledBack, StatusRollbackFailed, StatusPartial, StatusAborted, StatusFailed:
		return true
	default:
		return false
	}
}

// NeedsAttention reports whether the remote timetable may be inconsistent.
func (s Status) NeedsAttention() bool {
	return s == StatusRollbackFailed || s == StatusPartial
}

// Mutation is the journaled form of one entry move.
type Mutation struct {
	EntryID  string
	OldStart time.Time
	OldEnd   time.Time
	NewStart time.Time
	NewEnd   time.Time
}

// Record is one executed swap.
type Record struct {
	ID           string // uuid
	ConferenceID string
	EntryA       string
	EntryB       string
	Status       Status
	Detail       string // error message, empty when applied
	Mutations    []Mutation
	CreatedAt    time.Time
}

// Validate checks that the record can be stored.
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	return nil
}

// Filter narrows a journal listing.
type Filter struct {
	ConferenceID string // empty for all conferences
	Limit        int    // 0 for no limit
}

// Repository defines the storage interface for the swap journal.
type Repository interface {
	// Append stores a record. Records are never updated.
	Append(ctx context.Context, r *Record) error

	// List returns records newest first.
	List(ctx context.Context, f Filter) ([]*Record, error)

	// Get retrieves a record by id.
	// Returns ErrRecordNotFound if no record has that id.
	Get(ctx context.Context, id string) (*Record, error)

	// Close releases any resources held by the repository.
	Close() error
}
