package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/indico/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampOffset()
		return m, nil

	case spinner.TickMsg:
		if !m.loading && m.mode != ModeApplying {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case commands.TimetableLoadedMsg:
		m.loading = false
		m.err = nil
		m.setTree(msg.Tree, msg.Findings)
		m.logger.Debug("timetable loaded", "entries", msg.Tree.Len(), "findings", len(msg.Findings))
		return m, nil

	case commands.SwapDoneMsg:
		a, b := msg.Result.Updated[0], msg.Result.Updated[1]
		m.mode = ModeBrowse
		m.plan = nil
		m.marked = nil
		m.loading = true
		cmd := m.setStatus(fmt.Sprintf("Swapped %s and %s", a.ID, b.ID), 5*time.Second)
		return m, tea.Batch(cmd, m.spinner.Tick, m.load())

	case commands.ErrMsg:
		m.logger.Error("browser error", "error", msg.Err)
		m.err = msg.Err
		m.loading = false
		if m.mode == ModeApplying {
			// The remote state is unknown after a failed swap; refetch it.
			m.mode = ModeBrowse
			m.plan = nil
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.load())
		}
		return m, nil

	case commands.StatusMsgCmd:
		return m, m.setStatus(msg.Msg, 3*time.Second)

	case commands.ClearStatusMsg:
		if time.Now().After(m.statusTime) {
			m.statusMsg = ""
		}
		return m, nil
	}

	return m, nil
}
