package swap

import (
	"context"
	"log/slog"
	"time"

	"github.com/javiermolinar/indico/internal/timetable"
)

// Persister writes an entry's new start and end time to the server.
// It returns the entry as stored after the change.
type Persister interface {
	PersistEntry(ctx context.Context, entry timetable.Entry, start, end time.Time) (timetable.Entry, error)
}

// Result holds both entries after a successful swap, in plan order.
type Result struct {
	Updated [2]timetable.Entry
}

// Executor applies plans through a Persister.
type Executor struct {
	persister Persister
	logger    *slog.Logger
}

// NewExecutor creates an executor. A nil logger discards output.
func NewExecutor(p Persister, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{persister: p, logger: logger}
}

// Execute persists the two mutations of plan one after the other.
//
// If the first mutation fails nothing has changed and a *MutationError is
// returned. If the second fails the first is rolled back exactly once to its
// original slot; the result is a *PartialSwapError when the rollback succeeds
// and a *RollbackFailedError when it does not. When ctx is done before the
// first mutation the swap is aborted; when it is done before or during the
// second, no rollback is sent and the partial state is reported. A second
// mutation that fails on its own request timeout is still rolled back.
func (x *Executor) Execute(ctx context.Context, plan *Plan) (*Result, error) {
	if plan == nil || !plan.validated {
		return nil, ErrUnvalidatedPlan
	}
	first, second := plan.Mutations[0], plan.Mutations[1]

	if err := ctx.Err(); err != nil {
		x.logger.Warn("swap aborted before first mutation", "entry", first.ID(), "error", err)
		return nil, &AbortedError{Cause: err}
	}

	x.logger.Info("persisting mutation", "step", 1, "entry", first.ID(),
		"start", first.NewStart, "end", first.NewEnd)
	updatedFirst, err := x.persister.PersistEntry(ctx, first.Entry, first.NewStart, first.NewEnd)
	if err != nil {
		x.logger.Error("first mutation failed", "entry", first.ID(), "error", err)
		return nil, &MutationError{Mutation: first, Err: err}
	}

	if err := ctx.Err(); err != nil {
		x.logger.Warn("deadline reached between mutations", "applied", first.ID(), "error", err)
		return nil, &PartialSwapError{Applied: first, Failed: second, Cause: err}
	}

	x.logger.Info("persisting mutation", "step", 2, "entry", second.ID(),
		"start", second.NewStart, "end", second.NewEnd)
	updatedSecond, err := x.persister.PersistEntry(ctx, second.Entry, second.NewStart, second.NewEnd)
	if err == nil {
		return &Result{Updated: [2]timetable.Entry{updatedFirst, updatedSecond}}, nil
	}

	x.logger.Error("second mutation failed", "entry", second.ID(), "error", err)
	partial := &PartialSwapError{Applied: first, Failed: second, Cause: err}

	// A per-request timeout leaves ctx alive; only a done ctx skips the rollback.
	if ctx.Err() != nil {
		return nil, partial
	}

	partial.RollbackAttempted = true
	original := first.Entry
	x.logger.Info("rolling back mutation", "entry", first.ID(), "start", original.Start, "end", original.End)
	if _, rbErr := x.persister.PersistEntry(ctx, first.Updated(), original.Start, original.End); rbErr != nil {
		x.logger.Error("rollback failed", "entry", first.ID(), "error", rbErr)
		return nil, &RollbackFailedError{Partial: partial, Err: rbErr}
	}
	partial.RolledBack = true
	return nil, partial
}
