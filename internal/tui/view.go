package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/indico/internal/swap"
)

const (
	conflictMarker = "!"
	markedMarker   = "*"
)

// View renders the browser.
func (m Model) View() string {
	var sections []string
	sections = append(sections, m.renderHeader())

	switch {
	case m.tree == nil && m.loading:
		sections = append(sections, m.spinner.View()+" Loading timetable...")
	case m.tree == nil:
		sections = append(sections, "No timetable loaded.")
	default:
		sections = append(sections, m.renderList())
	}

	if m.plan != nil {
		sections = append(sections, m.renderPlan())
	}
	sections = append(sections, m.renderFooter())

	return m.styles.AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderHeader() string {
	title := m.styles.TitleStyle.Render("Indico timetable " + m.conferenceID)

	info := m.days.String()
	if m.tree != nil {
		info = fmt.Sprintf("%s · %d entries · %d conflicts", info, m.tree.Len(), len(m.findings))
	}
	if m.loading && m.tree != nil {
		info += " " + m.spinner.View()
	}
	return title + " " + m.styles.HeaderStyle.Render(info)
}

func (m Model) renderList() string {
	if len(m.rows) == 0 {
		return "No entries in this range."
	}

	width := m.width - 2
	if width <= 0 {
		width = 80
	}

	end := min(m.offset+m.listHeight(), len(m.rows))
	var lines []string
	var lastDay string
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		if day := r.entry.Start.Format("Monday 2 January"); r.depth == 0 && day != lastDay {
			lines = append(lines, m.styles.DayStyle.Render(day))
			lastDay = day
		}
		line := ansi.Truncate(m.renderRow(r), width, "…")
		if i == m.cursor {
			line = m.styles.CursorStyle.Width(width).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r row) string {
	e := r.entry

	marker := " "
	switch {
	case m.isMarked(e.ID):
		marker = m.styles.MarkedStyle.Render(markedMarker)
	case r.conflict:
		marker = m.styles.ConflictStyle.Render(conflictMarker)
	}

	times := m.styles.TimeStyle.Render(e.Start.Format("15:04") + "-" + e.End.Format("15:04"))
	title := m.styles.kindStyle(e.Kind).Render(e.Title)
	if r.conflict {
		title = m.styles.ConflictStyle.Render(e.Title)
	}

	return fmt.Sprintf("%s %s%s %s %s",
		marker,
		strings.Repeat("  ", r.depth),
		times,
		title,
		m.styles.IDStyle.Render("["+e.Kind.Short()+" "+e.ID+"]"),
	)
}

func (m Model) renderPlan() string {
	var b strings.Builder
	b.WriteString(m.styles.PanelTitleStyle.Render("Swap plan"))
	for _, mut := range m.plan.Mutations {
		fmt.Fprintf(&b, "\n%s  %s → %s  %s",
			mut.ID(),
			m.styles.OldTimeStyle.Render(formatSlot(mut.Entry.Start, mut.Entry.End)),
			m.styles.NewTimeStyle.Render(formatSlot(mut.NewStart, mut.NewEnd)),
			mut.Entry.Title,
		)
	}
	if m.mode == ModeApplying {
		b.WriteString("\n" + m.spinner.View() + " Applying...")
	} else {
		b.WriteString("\nApply this swap? y/n")
	}
	return m.styles.PanelStyle.Render(b.String())
}

func (m Model) renderFooter() string {
	var lines []string
	if m.err != nil {
		lines = append(lines, m.styles.ErrorStyle.Render(errorText(m.err)))
	}
	if m.statusMsg != "" {
		lines = append(lines, m.styles.StatusStyle.Render(m.statusMsg))
	}
	if len(m.marked) > 0 {
		lines = append(lines, m.styles.MarkedStyle.Render("Marked: "+strings.Join(m.marked, ", ")))
	}

	if m.mode == ModeBrowse {
		lines = append(lines, m.help.View(m.keys))
	} else {
		lines = append(lines, m.help.View(confirmKeys{m.keys}))
	}
	return strings.Join(lines, "\n")
}

func formatSlot(start, end time.Time) string {
	return start.Format("Mon 15:04") + "-" + end.Format("15:04")
}

// planText renders a plan as plain text for the clipboard.
func planText(p *swap.Plan) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for _, mut := range p.Mutations {
		fmt.Fprintf(&b, "%s %q: %s -> %s\n", mut.ID(), mut.Entry.Title,
			formatSlot(mut.Entry.Start, mut.Entry.End), formatSlot(mut.NewStart, mut.NewEnd))
	}
	return b.String()
}
