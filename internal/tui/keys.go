package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/indico/internal/engine"
	"github.com/javiermolinar/indico/internal/overlap"
	"github.com/javiermolinar/indico/internal/timetable"
	"github.com/javiermolinar/indico/internal/tui/commands"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Mark    key.Binding
	Plan    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Copy    key.Binding
	Reload  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Top:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Mark:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
		Plan:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "plan swap")),
		Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "apply")),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		Copy:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy report")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Mark, k.Plan, k.Copy, k.Reload, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Mark, k.Plan, k.Confirm, k.Cancel},
		{k.Copy, k.Reload, k.Help, k.Quit},
	}
}

// confirmKeys is the help shown while a plan waits for confirmation.
type confirmKeys struct{ keyMap }

func (k confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel, k.Copy}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("key", "key", msg.String(), "mode", m.mode)

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	case ModeApplying:
		// Nothing but ctrl+c while persisting.
		return m, nil
	default:
		return m.handleBrowseKeys(msg)
	}
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(m.rows)-1, 0)

	case key.Matches(msg, m.keys.Mark):
		m.toggleMark()

	case key.Matches(msg, m.keys.Plan):
		return m.planSwap()

	case key.Matches(msg, m.keys.Copy):
		if m.tree == nil {
			return m, nil
		}
		return m, commands.CopyToClipboard(overlap.Report(m.findings), "overlap report")

	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.load())

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.clampOffset()
	return m, nil
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.mode = ModeApplying
		m.logger.Info("applying swap", "a", m.plan.Mutations[0].ID(), "b", m.plan.Mutations[1].ID())
		return m, tea.Batch(m.spinner.Tick, commands.ExecuteSwap(m.engine, m.conferenceID, m.plan, m.deadline))

	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.mode = ModeBrowse
		m.plan = nil
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m, commands.CopyToClipboard(planText(m.plan), "swap plan")
	}
	return m, nil
}

// planSwap computes the swap of the two marked entries without side effects.
func (m Model) planSwap() (tea.Model, tea.Cmd) {
	if m.tree == nil {
		return m, nil
	}
	if len(m.marked) != 2 {
		cmd := m.setStatus("Mark two entries with space first", 3*time.Second)
		return m, cmd
	}

	plan, err := engine.PlanIn(m.tree, m.marked[0], m.marked[1], timetable.IDTimetable)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.plan = plan
	m.mode = ModeConfirm
	m.clampOffset()
	return m, nil
}

// errorText returns the message shown for err.
func errorText(err error) string {
	var notFound *timetable.EntryNotFoundError
	if errors.As(err, &notFound) {
		return "Entry vanished, reload with r: " + err.Error()
	}
	return err.Error()
}
