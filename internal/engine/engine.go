// Package engine exposes timetable conflict detection and entry swaps to
// the command line. It fetches a timetable through an explicitly passed
// backend, computes in memory and persists at most two mutations per swap.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/indico/internal/dateutil"
	"github.com/javiermolinar/indico/internal/history"
	"github.com/javiermolinar/indico/internal/overlap"
	"github.com/javiermolinar/indico/internal/swap"
	"github.com/javiermolinar/indico/internal/timetable"
)

// ErrFetchFailed is matched by every FetchFailedError.
var ErrFetchFailed = errors.New("fetching timetable failed")

// FetchFailedError wraps an error returned by the Fetcher.
type FetchFailedError struct {
	ConferenceID string
	Err          error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("%s for conference %s: %v", ErrFetchFailed, e.ConferenceID, e.Err)
}

// Is reports whether target is ErrFetchFailed.
func (e *FetchFailedError) Is(target error) bool {
	return target == ErrFetchFailed
}

// Unwrap returns the fetcher's error.
func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the flat entry list of a conference timetable.
// Entries need not be sorted.
type Fetcher interface {
	FetchTimetable(ctx context.Context, conferenceID string, days dateutil.DateRange) ([]timetable.Entry, error)
}

// Persister moves one entry of a conference to a new slot.
type Persister interface {
	PersistEntry(ctx context.Context, conferenceID string, entry timetable.Entry, start, end time.Time) (timetable.Entry, error)
}

// Backend is the collaborator an Engine talks to, usually *indico.Client.
type Backend interface {
	Fetcher
	Persister
}

// Journal records executed swaps.
type Journal interface {
	Append(ctx context.Context, r *history.Record) error
}

// Engine runs overlap detection and swaps against one backend.
type Engine struct {
	backend Backend
	journal Journal
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal records every swap execution in j.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine.
func New(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		backend: backend,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timetable fetches a conference timetable and builds its tree.
func (e *Engine) Timetable(ctx context.Context, conferenceID string, days dateutil.DateRange) (*timetable.Tree, error) {
	entries, err := e.backend.FetchTimetable(ctx, conferenceID, days)
	if err != nil {
		return nil, &FetchFailedError{ConferenceID: conferenceID, Err: err}
	}

	tree, err := timetable.Build(entries)
	if err != nil {
		return nil, fmt.Errorf("building timetable of conference %s: %w", conferenceID, err)
	}

	e.logger.Debug("timetable built", "conference", conferenceID, "entries", tree.Len(), "days", days.String())
	return tree, nil
}

// Overlap reports sibling overlaps and containment violations.
func (e *Engine) Overlap(ctx context.Context, conferenceID string, days dateutil.DateRange) ([]overlap.Finding, error) {
	tree, err := e.Timetable(ctx, conferenceID, days)
	if err != nil {
		return nil, err
	}
	findings := overlap.Find(tree)
	e.logger.Info("overlap check", "conference", conferenceID, "findings", len(findings))
	return findings, nil
}

// Clashes reports contributions sharing a speaker or room at the same time.
// BySibling behaves like Overlap.
func (e *Engine) Clashes(ctx context.Context, conferenceID string, days dateutil.DateRange, by overlap.Resource) ([]overlap.Finding, error) {
	if by == overlap.BySibling {
		return e.Overlap(ctx, conferenceID, days)
	}
	tree, err := e.Timetable(ctx, conferenceID, days)
	if err != nil {
		return nil, err
	}
	findings := overlap.FindClashes(tree, by)
	e.logger.Info("clash check", "conference", conferenceID, "by", by, "findings", len(findings))
	return findings, nil
}

// Plan resolves two entries and computes their swap without side effects.
// The whole timetable is fetched: sibling groups may span several days.
func (e *Engine) Plan(ctx context.Context, conferenceID, a, b string, kind timetable.IDKind) (*swap.Plan, error) {
	tree, err := e.Timetable(ctx, conferenceID, dateutil.DateRange{})
	if err != nil {
		return nil, err
	}
	return PlanIn(tree, a, b, kind)
}

// PlanIn resolves two entries in an already fetched tree and computes their swap.
func PlanIn(tree *timetable.Tree, a, b string, kind timetable.IDKind) (*swap.Plan, error) {
	entryA, err := tree.Resolve(kind, a)
	if err != nil {
		return nil, err
	}
	entryB, err := tree.Resolve(kind, b)
	if err != nil {
		return nil, err
	}
	return swap.NewPlan(tree, entryA.ID, entryB.ID)
}

// Swap plans and executes the swap of two entries.
func (e *Engine) Swap(ctx context.Context, conferenceID, a, b string, kind timetable.IDKind) (*swap.Result, error) {
	plan, err := e.Plan(ctx, conferenceID, a, b, kind)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, conferenceID, plan)
}

// Execute applies a plan and journals the outcome.
func (e *Engine) Execute(ctx context.Context, conferenceID string, plan *swap.Plan) (*swap.Result, error) {
	op := uuid.NewString()
	logger := e.logger.With("op", op, "conference", conferenceID)

	persister := conferencePersister{backend: e.backend, conferenceID: conferenceID}
	result, err := swap.NewExecutor(persister, logger).Execute(ctx, plan)

	status := statusOf(err)
	if status == history.StatusApplied {
		logger.Info("swap applied", "a", plan.Mutations[0].ID(), "b", plan.Mutations[1].ID())
	} else {
		logger.Error("swap not applied", "status", status, "error", err)
	}

	if errors.Is(err, swap.ErrUnvalidatedPlan) {
		return nil, err
	}
	e.record(ctx, logger, op, conferenceID, plan, status, err)
	return result, err
}

func (e *Engine) record(ctx context.Context, logger *slog.Logger, op, conferenceID string, plan *swap.Plan, status history.Status, execErr error) {
	if e.journal == nil {
		return
	}

	rec := &history.Record{
		ID:           op,
		ConferenceID: conferenceID,
		EntryA:       plan.Mutations[0].ID(),
		EntryB:       plan.Mutations[1].ID(),
		Status:       status,
		CreatedAt:    e.now(),
	}
	if execErr != nil {
		rec.Detail = execErr.Error()
	}
	for _, m := range plan.Mutations {
		rec.Mutations = append(rec.Mutations, history.Mutation{
			EntryID:  m.ID(),
			OldStart: m.Entry.Start,
			OldEnd:   m.Entry.End,
			NewStart: m.NewStart,
			NewEnd:   m.NewEnd,
		})
	}

	// The swap already happened; record it even if the caller's deadline passed.
	if err := e.journal.Append(context.WithoutCancel(ctx), rec); err != nil {
		logger.Error("journal append failed", "error", err)
	}
}

// statusOf maps an execution error to its journal status.
func statusOf(err error) history.Status {
	var (
		rollbackErr *swap.RollbackFailedError
		partialErr  *swap.PartialSwapError
	)
	switch {
	case err == nil:
		return history.StatusApplied
	case errors.As(err, &rollbackErr):
		return history.StatusRollbackFailed
	case errors.As(err, &partialErr):
		if partialErr.RolledBack {
			return history.StatusRolledBack
		}
		return history.StatusPartial
	case errors.Is(err, swap.ErrSwapAborted):
		return history.StatusAborted
	default:
		return history.StatusFailed
	}
}

// conferencePersister binds a Persister to one conference for the executor.
type conferencePersister struct {
	backend      Persister
	conferenceID string
}

func (p conferencePersister) PersistEntry(ctx context.Context, entry timetable.Entry, start, end time.Time) (timetable.Entry, error) {
	return p.backend.PersistEntry(ctx, p.conferenceID, entry, start, end)
}
