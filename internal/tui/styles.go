// Package tui provides the terminal timetable browser.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/indico/internal/timetable"
	"github.com/javiermolinar/indico/internal/tui/theme"
)

// Styles holds all lipgloss styles for the browser, derived from a theme.
type Styles struct {
	TitleStyle  lipgloss.Style
	HeaderStyle lipgloss.Style
	DayStyle    lipgloss.Style
	TimeStyle   lipgloss.Style
	IDStyle     lipgloss.Style

	// Entry titles by kind
	SessionStyle      lipgloss.Style
	ContributionStyle lipgloss.Style
	BreakStyle        lipgloss.Style

	CursorStyle   lipgloss.Style
	MarkedStyle   lipgloss.Style
	ConflictStyle lipgloss.Style

	// Plan panel
	PanelStyle      lipgloss.Style
	PanelTitleStyle lipgloss.Style
	OldTimeStyle    lipgloss.Style
	NewTimeStyle    lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	HelpStyle   lipgloss.Style
	AppStyle    lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	s := &Styles{}

	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.TextOnAccent).
		Background(p.Accent).
		Padding(0, 1)

	s.HeaderStyle = lipgloss.NewStyle().Foreground(p.FgMuted)

	s.DayStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent).
		MarginTop(1)

	s.TimeStyle = lipgloss.NewStyle().Foreground(p.FgMuted)
	s.IDStyle = lipgloss.NewStyle().Foreground(p.FgMuted).Faint(true)

	s.SessionStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Session)
	s.ContributionStyle = lipgloss.NewStyle().Foreground(p.Contribution)
	s.BreakStyle = lipgloss.NewStyle().Italic(true).Foreground(p.Break)

	s.CursorStyle = lipgloss.NewStyle().Background(p.BgSelection)
	s.MarkedStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Marked)
	s.ConflictStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Conflict)

	s.PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	s.PanelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	s.OldTimeStyle = lipgloss.NewStyle().Foreground(p.FgMuted).Strikethrough(true)
	s.NewTimeStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Contribution)

	s.StatusStyle = lipgloss.NewStyle().Foreground(p.Accent)
	s.ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(p.TextOnConflict).Background(p.ConflictBg)
	s.HelpStyle = lipgloss.NewStyle().Foreground(p.FgMuted)
	s.AppStyle = lipgloss.NewStyle().Padding(0, 1)

	return s
}

// kindStyle returns the title style of an entry kind.
func (s *Styles) kindStyle(k timetable.Kind) lipgloss.Style {
	switch k {
	case timetable.KindSessionBlock:
		return s.SessionStyle
	case timetable.KindBreak:
		return s.BreakStyle
	default:
		return s.ContributionStyle
	}
}
