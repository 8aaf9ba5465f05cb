// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/indico/internal/dateutil"
	"github.com/javiermolinar/indico/internal/overlap"
	"github.com/javiermolinar/indico/internal/swap"
	"github.com/javiermolinar/indico/internal/timetable"
)

// Engine is the part of the engine the browser drives.
type Engine interface {
	Timetable(ctx context.Context, conferenceID string, days dateutil.DateRange) (*timetable.Tree, error)
	Execute(ctx context.Context, conferenceID string, plan *swap.Plan) (*swap.Result, error)
}

// TimetableLoadedMsg is sent when the timetable has been fetched.
type TimetableLoadedMsg struct {
	Tree     *timetable.Tree
	Findings []overlap.Finding
}

// SwapDoneMsg is sent when a swap has been applied.
type SwapDoneMsg struct {
	Result *swap.Result
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadTimetable fetches a timetable and checks it for overlaps.
func LoadTimetable(eng Engine, conferenceID string, days dateutil.DateRange, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout(timeout)
		defer cancel()

		tree, err := eng.Timetable(ctx, conferenceID, days)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return TimetableLoadedMsg{Tree: tree, Findings: overlap.Find(tree)}
	}
}

// ExecuteSwap applies a validated plan within deadline.
func ExecuteSwap(eng Engine, conferenceID string, plan *swap.Plan, deadline time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout(deadline)
		defer cancel()

		result, err := eng.Execute(ctx, conferenceID, plan)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return SwapDoneMsg{Result: result}
	}
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text, what string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ErrMsg{Err: err}
		}
		return StatusMsgCmd{Msg: "Copied " + what + " to clipboard"}
	}
}

// ClearStatusAfter clears the status line after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d)
}
