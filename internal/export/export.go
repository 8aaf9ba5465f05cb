// Package export renders a timetable as JSON or iCalendar.
package export

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/javiermolinar/indico/internal/timetable"
)

const productID = "-//indico-timetable//EN"

// JSON renders entries as an indented document:
//
//	{"conference": "42", "entries": [{"id": "c1", ...}]}
//
// Entries keep their timetable order. Colorize adds terminal colors.
func JSON(conferenceID string, entries []timetable.Entry, colorize bool) ([]byte, error) {
	doc := []byte(`{"entries":[]}`)

	doc, err := sjson.SetBytes(doc, "conference", conferenceID)
	if err != nil {
		return nil, fmt.Errorf("encoding conference: %w", err)
	}

	for _, e := range entries {
		item := map[string]any{
			"id":    e.ID,
			"kind":  string(e.Kind),
			"title": e.Title,
			"start": e.Start.Format(time.RFC3339),
			"end":   e.End.Format(time.RFC3339),
		}
		if e.ParentID != timetable.TopLevel {
			item["parent"] = e.ParentID
		}
		if e.ContributionID != "" {
			item["contribution_id"] = e.ContributionID
		}
		if e.FriendlyID != "" {
			item["friendly_id"] = e.FriendlyID
		}
		if e.Room != "" {
			item["room"] = e.Room
		}
		if len(e.Speakers) > 0 {
			item["speakers"] = e.Speakers
		}

		doc, err = sjson.SetBytes(doc, "entries.-1", item)
		if err != nil {
			return nil, fmt.Errorf("encoding entry %s: %w", e.ID, err)
		}
	}

	doc = pretty.Pretty(doc)
	if colorize {
		doc = pretty.Color(doc, nil)
	}
	return doc, nil
}

// ICSOptions configures calendar output.
type ICSOptions struct {
	ConferenceID string
	Host         string // used in event UIDs, e.g. "events.canonical.com"
	EventURL     string // base URL linked from every event, optional
	Now          time.Time
}

// ICS renders entries as an iCalendar document with one VEVENT per entry.
// Session blocks are skipped when they have children: their contributions
// carry the schedule.
func ICS(tree *timetable.Tree, opts ICSOptions) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	for _, e := range tree.Entries() {
		if e.Kind == timetable.KindSessionBlock && len(tree.Children(e.ID)) > 0 {
			continue
		}

		event := cal.AddEvent(eventUID(opts, e))
		event.SetDtStampTime(now)
		event.SetStartAt(e.Start)
		event.SetEndAt(e.End)
		event.SetSummary(summary(tree, e))
		if e.Room != "" {
			event.SetLocation(e.Room)
		}
		if len(e.Speakers) > 0 {
			event.SetDescription("Speakers: " + strings.Join(e.Speakers, ", "))
		}
		if opts.EventURL != "" {
			event.SetURL(opts.EventURL)
		}
	}

	return cal.Serialize()
}

func eventUID(opts ICSOptions, e timetable.Entry) string {
	host := opts.Host
	if host == "" {
		host = "indico"
	}
	return fmt.Sprintf("%s-%s@%s", opts.ConferenceID, e.ID, host)
}

// summary prefixes an entry title with its session title.
func summary(tree *timetable.Tree, e timetable.Entry) string {
	if parent, ok := tree.Parent(e); ok && parent.Title != "" {
		return parent.Title + " / " + e.Title
	}
	return e.Title
}
