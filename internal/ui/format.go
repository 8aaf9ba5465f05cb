package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/javiermolinar/indico/internal/history"
	"github.com/javiermolinar/indico/internal/overlap"
	"github.com/javiermolinar/indico/internal/swap"
	"github.com/javiermolinar/indico/internal/timetable"
)

const (
	dayLayout  = "Monday, January 2, 2006"
	slotLayout = "15:04"
)

// PrintFindings prints one line per finding followed by a count.
func PrintFindings(w io.Writer, findings []overlap.Finding) {
	if len(findings) == 0 {
		fmt.Fprintln(w, formatOK("No conflicts found."))
		return
	}

	for _, f := range findings {
		fmt.Fprintf(w, "%s %s\n", formatConflict("["+string(f.Kind)+"]"), describeFinding(f))
	}
	fmt.Fprintf(w, "\n%s\n", formatConflict(pluralize(len(findings), "conflict", "conflicts")))
}

func describeFinding(f overlap.Finding) string {
	a := entryLabel(f.A)
	b := entryLabel(f.B)
	switch f.Kind {
	case overlap.KindContainmentViolation:
		return fmt.Sprintf("%s is outside session %s", a, b)
	case overlap.KindSpeakerClash:
		return fmt.Sprintf("%s and %s share speaker %s", a, b, f.Resource)
	case overlap.KindRoomClash:
		return fmt.Sprintf("%s and %s share room %s", a, b, f.Resource)
	default:
		return fmt.Sprintf("%s overlaps %s", a, b)
	}
}

// entryLabel renders "Title (id, Mon 09:00-09:30)".
func entryLabel(e timetable.Entry) string {
	return fmt.Sprintf("%q %s", e.Title,
		formatMuted(fmt.Sprintf("(%s, %s %s)", e.ID, e.Start.Format("Mon"), slotRange(e.Start, e.End))))
}

func slotRange(start, end time.Time) string {
	return start.Format(slotLayout) + "-" + end.Format(slotLayout)
}

// PrintTree prints the timetable grouped by day, children indented under
// their session block. Conflicting entries are marked with "!".
func PrintTree(w io.Writer, tree *timetable.Tree, findings []overlap.Finding, maxTitle int) {
	entries := tree.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries in this range.")
		return
	}

	conflicts := make(map[string]bool)
	for _, f := range findings {
		conflicts[f.A.ID] = true
		conflicts[f.B.ID] = true
	}

	var lastDay string
	for _, e := range entries {
		depth := tree.Depth(e.ID)
		if day := e.Start.Format(dayLayout); depth == 0 && day != lastDay {
			if lastDay != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "=== %s ===\n", formatHeader(day))
			lastDay = day
		}

		marker := " "
		if conflicts[e.ID] {
			marker = formatConflict("!")
		}

		title := truncate(e.Title, maxTitle-2*depth)
		fmt.Fprintf(w, "%s %s%s  %s  %s  %s\n",
			marker,
			strings.Repeat("  ", depth),
			slotRange(e.Start, e.End),
			formatKind(e.Kind, "["+e.Kind.Short()+"]"),
			title,
			formatMuted(e.ID),
		)
	}
}

// PrintPlan prints the moves of a swap plan.
func PrintPlan(w io.Writer, plan *swap.Plan) {
	fmt.Fprintln(w, formatHeader("Swap plan"))
	for _, m := range plan.Mutations {
		fmt.Fprintf(w, "  %s %q: %s -> %s\n",
			m.ID(), m.Entry.Title,
			formatMuted(m.Entry.Start.Format("Mon ")+slotRange(m.Entry.Start, m.Entry.End)),
			formatOK(m.NewStart.Format("Mon ")+slotRange(m.NewStart, m.NewEnd)),
		)
	}
	if plan.RoomsDiffer() {
		a, b := plan.Mutations[0].Entry, plan.Mutations[1].Entry
		fmt.Fprintln(w, formatMuted(fmt.Sprintf("  Rooms are not exchanged: %s stays in %s, %s stays in %s.",
			a.ID, a.Room, b.ID, b.Room)))
	}
}

// PrintResult prints the entries as persisted by a swap.
func PrintResult(w io.Writer, result *swap.Result) {
	fmt.Fprintln(w, formatOK("Swap applied."))
	for _, e := range result.Updated {
		fmt.Fprintf(w, "  %s %q now %s %s\n", e.ID, e.Title, e.Start.Format("Mon"), slotRange(e.Start, e.End))
	}
}

// PrintRecords prints journal records, newest first, with ages relative to now.
func PrintRecords(w io.Writer, records []*history.Record, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No swaps recorded.")
		return
	}

	for _, r := range records {
		status := string(r.Status)
		switch {
		case r.Status == history.StatusApplied:
			status = formatOK(status)
		case r.Status.NeedsAttention():
			status = formatConflict(status)
		default:
			status = formatMuted(status)
		}

		fmt.Fprintf(w, "%s  %-16s %s  conf %s  %s <-> %s\n",
			formatMuted(r.ID[:min(8, len(r.ID))]),
			status,
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
			r.ConferenceID, r.EntryA, r.EntryB,
		)
		for _, m := range r.Mutations {
			fmt.Fprintf(w, "    %s: %s -> %s\n", m.EntryID,
				m.OldStart.Format("Jan 2 ")+slotRange(m.OldStart, m.OldEnd),
				m.NewStart.Format("Jan 2 ")+slotRange(m.NewStart, m.NewEnd))
		}
		if r.Detail != "" {
			fmt.Fprintf(w, "    %s\n", formatMuted(r.Detail))
		}
	}
}

func truncate(s string, width int) string {
	if width < 4 {
		width = 4
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
