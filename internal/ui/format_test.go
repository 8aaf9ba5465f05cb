package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/javiermolinar/indico/internal/history"
	"github.com/javiermolinar/indico/internal/overlap"
	"github.com/javiermolinar/indico/internal/swap"
	"github.com/javiermolinar/indico/internal/timetable"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = prev
	})
}

func at(hh, mm int) time.Time {
	return time.Date(2025, 6, 2, hh, mm, 0, 0, time.UTC)
}

func entry(id, parent string, kind timetable.Kind, sh, sm, eh, em int) timetable.Entry {
	e := timetable.Entry{
		ID:       id,
		Kind:     kind,
		ParentID: parent,
		Title:    "Item " + id,
		Start:    at(sh, sm),
		End:      at(eh, em),
	}
	if kind == timetable.KindContribution {
		e.ContributionID = id[1:]
	}
	return e
}

func sampleTree(t *testing.T) *timetable.Tree {
	t.Helper()
	tree, err := timetable.Build([]timetable.Entry{
		entry("s1", "", timetable.KindSessionBlock, 9, 0, 11, 0),
		entry("c2", "s1", timetable.KindContribution, 9, 0, 9, 45),
		entry("c3", "s1", timetable.KindContribution, 9, 30, 10, 0),
		entry("b4", "", timetable.KindBreak, 11, 0, 11, 30),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return tree
}

func TestPrintFindings(t *testing.T) {
	noColor(t)

	t.Run("none", func(t *testing.T) {
		var buf bytes.Buffer
		PrintFindings(&buf, nil)
		if got := buf.String(); got != "No conflicts found.\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("overlap and speaker", func(t *testing.T) {
		tree := sampleTree(t)
		c2, _ := tree.Entry("c2")
		c3, _ := tree.Entry("c3")

		var buf bytes.Buffer
		PrintFindings(&buf, []overlap.Finding{
			{Kind: overlap.KindSiblingOverlap, A: c2, B: c3},
			{Kind: overlap.KindSpeakerClash, A: c2, B: c3, Resource: "Ada"},
		})
		out := buf.String()

		for _, want := range []string{
			`[sibling_overlap] "Item c2" (c2, Mon 09:00-09:45) overlaps "Item c3" (c3, Mon 09:30-10:00)`,
			"share speaker Ada",
			"2 conflicts",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestPrintTree(t *testing.T) {
	noColor(t)

	tree := sampleTree(t)
	var buf bytes.Buffer
	PrintTree(&buf, tree, overlap.Find(tree), 60)
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "=== Monday, June 2, 2025 ===" {
		t.Errorf("header = %q", lines[0])
	}
	for _, want := range []string{
		"  09:00-11:00  [S]  Item s1  s1",
		"!   09:00-09:45  [C]  Item c2  c2",
		"!   09:30-10:00  [C]  Item c3  c3",
		"  11:00-11:30  [B]  Item b4  b4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTree_Empty(t *testing.T) {
	tree, err := timetable.Build(nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var buf bytes.Buffer
	PrintTree(&buf, tree, nil, 60)
	if got := buf.String(); got != "No entries in this range.\n" {
		t.Errorf("got %q", got)
	}
}

func TestPrintPlan_RoomsStay(t *testing.T) {
	noColor(t)

	c1 := entry("c1", "", timetable.KindContribution, 10, 0, 10, 30)
	c1.Room = "Main Hall"
	c2 := entry("c2", "", timetable.KindContribution, 11, 0, 11, 30)
	c2.Room = "Annex"
	tree, err := timetable.Build([]timetable.Entry{c1, c2})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	plan, err := swap.NewPlan(tree, "c1", "c2")
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}

	var buf bytes.Buffer
	PrintPlan(&buf, plan)
	if want := "Rooms are not exchanged: c1 stays in Main Hall, c2 stays in Annex."; !strings.Contains(buf.String(), want) {
		t.Errorf("output missing %q:\n%s", want, buf.String())
	}

	c1.Room = ""
	tree, err = timetable.Build([]timetable.Entry{c1, c2})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	plan, err = swap.NewPlan(tree, "c1", "c2")
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	buf.Reset()
	PrintPlan(&buf, plan)
	if strings.Contains(buf.String(), "Rooms") {
		t.Errorf("room note printed with an unknown room:\n%s", buf.String())
	}
}

func TestPrintRecords(t *testing.T) {
	noColor(t)

	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	records := []*history.Record{
		{
			ID:           "0f6c2a9e-8d1b-4c3a-9f00-123456789abc",
			ConferenceID: "42",
			EntryA:       "c10",
			EntryB:       "c11",
			Status:       history.StatusPartial,
			Detail:       "context deadline exceeded",
			Mutations: []history.Mutation{
				{EntryID: "c10", OldStart: at(10, 0), OldEnd: at(10, 30), NewStart: at(11, 0), NewEnd: at(11, 30)},
			},
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}

	var buf bytes.Buffer
	PrintRecords(&buf, records, now)
	out := buf.String()

	for _, want := range []string{
		"0f6c2a9e",
		"partial",
		"2 hours ago",
		"conf 42  c10 <-> c11",
		"c10: Jun 2 10:00-10:30 -> Jun 2 11:00-11:30",
		"context deadline exceeded",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintRecords(&buf, nil, now)
	if got := buf.String(); got != "No swaps recorded.\n" {
		t.Errorf("empty journal: got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a long talk title", 10, "a long ..."},
		{"tiny", 1, "tiny"},
		{"Ünïcödé títle", 8, "Ünïcö..."},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := truncate(tt.in, tt.width); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize(1, "conflict", "conflicts"); got != "1 conflict" {
		t.Errorf("got %q", got)
	}
	if got := pluralize(0, "conflict", "conflicts"); got != "0 conflicts" {
		t.Errorf("got %q", got)
	}
}

func TestMaskToken(t *testing.T) {
	tests := map[string]string{
		"":                "(not set)",
		"abc":             "****",
		"indp_0123456789": "****6789",
	}
	for in, want := range tests {
		if got := maskToken(in); got != want {
			t.Errorf("maskToken(%q) = %q, want %q", in, got, want)
		}
	}
}
