package tui

import (
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/indico/internal/config"
	"github.com/javiermolinar/indico/internal/dateutil"
	"github.com/javiermolinar/indico/internal/overlap"
	"github.com/javiermolinar/indico/internal/swap"
	"github.com/javiermolinar/indico/internal/timetable"
	"github.com/javiermolinar/indico/internal/tui/commands"
	"github.com/javiermolinar/indico/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeBrowse  Mode = iota
	ModeConfirm      // Plan shown, waiting for y/n
	ModeApplying     // Swap in flight
)

// row is one rendered timetable line.
type row struct {
	entry    timetable.Entry
	depth    int
	conflict bool
}

// Model is the browser model.
type Model struct {
	// Dependencies
	engine       commands.Engine
	conferenceID string
	days         dateutil.DateRange
	timeout      time.Duration
	deadline     time.Duration
	logger       *slog.Logger

	styles  *Styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	// State
	mode     Mode
	loading  bool
	tree     *timetable.Tree
	findings []overlap.Finding
	rows     []row
	cursor   int
	offset   int
	marked   []string // at most two timetable ids
	plan     *swap.Plan

	// Messages
	statusMsg  string
	statusTime time.Time
	err        error

	width  int
	height int
}

// Options configures a browser.
type Options struct {
	ConferenceID string
	Days         dateutil.DateRange
	Logger       *slog.Logger
}

// New creates a browser model.
func New(eng commands.Engine, cfg *config.Config, opts Options) Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load(theme.DefaultName)
	}
	styles := NewStyles(t)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpStyle.Bold(true)
	h.Styles.ShortDesc = styles.HelpStyle
	h.Styles.FullKey = styles.HelpStyle.Bold(true)
	h.Styles.FullDesc = styles.HelpStyle

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return Model{
		engine:       eng,
		conferenceID: opts.ConferenceID,
		days:         opts.Days,
		timeout:      cfg.RequestTimeout(),
		deadline:     cfg.SwapDeadline(),
		logger:       logger,
		styles:       styles,
		keys:         defaultKeyMap(),
		help:         h,
		spinner:      sp,
		mode:         ModeBrowse,
		loading:      true,
	}
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) load() tea.Cmd {
	return commands.LoadTimetable(m.engine, m.conferenceID, m.days, m.timeout)
}

// Run starts the browser.
func Run(eng commands.Engine, cfg *config.Config, opts Options) error {
	p := tea.NewProgram(New(eng, cfg, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// setTree replaces the displayed timetable, keeping the cursor on the same entry.
func (m *Model) setTree(tree *timetable.Tree, findings []overlap.Finding) {
	var current string
	if e, ok := m.selected(); ok {
		current = e.ID
	}

	conflicts := make(map[string]bool)
	for _, f := range findings {
		conflicts[f.A.ID] = true
		conflicts[f.B.ID] = true
	}

	m.tree = tree
	m.findings = findings
	m.rows = make([]row, 0, tree.Len())
	m.cursor = 0
	for i, e := range tree.Entries() {
		m.rows = append(m.rows, row{entry: e, depth: tree.Depth(e.ID), conflict: conflicts[e.ID]})
		if e.ID == current {
			m.cursor = i
		}
	}
	m.clampOffset()
}

// selected returns the entry under the cursor.
func (m Model) selected() (timetable.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return timetable.Entry{}, false
	}
	return m.rows[m.cursor].entry, true
}

// toggleMark marks or unmarks the entry under the cursor.
// Marking a third entry drops the oldest mark.
func (m *Model) toggleMark() {
	e, ok := m.selected()
	if !ok {
		return
	}
	for i, id := range m.marked {
		if id == e.ID {
			m.marked = append(m.marked[:i:i], m.marked[i+1:]...)
			return
		}
	}
	m.marked = append(m.marked, e.ID)
	if len(m.marked) > 2 {
		m.marked = m.marked[len(m.marked)-2:]
	}
}

func (m Model) isMarked(id string) bool {
	return slices.Contains(m.marked, id)
}

// listHeight is the number of rows the entry list may use.
func (m Model) listHeight() int {
	h := m.height - 6
	if m.mode != ModeBrowse {
		h -= 7
	}
	if h < 3 {
		return 3
	}
	return h
}

func (m *Model) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) setStatus(msg string, d time.Duration) tea.Cmd {
	m.statusMsg = msg
	m.statusTime = time.Now().Add(d)
	return commands.ClearStatusAfter(d)
}
