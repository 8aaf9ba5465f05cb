package indico

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/javiermolinar/indico/internal/dateutil"
	"github.com/javiermolinar/indico/internal/timetable"
)

const (
	// editLayout is what the datetime edit endpoint expects.
	editLayout   = "2006-01-02T15:04:05"
	exportLayout = "2006-01-02 15:04:05"
)

// ParseTimetable flattens a timetable export into entries.
// The export nests results.<conference>.<day>.<entry>, with the contributions
// of a session block under its "entries" key. Days outside the range are skipped.
func ParseTimetable(body []byte, conferenceID string, days dateutil.DateRange) ([]timetable.Entry, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrInvalidResponse)
	}

	var conference gjson.Result
	gjson.GetBytes(body, "results").ForEach(func(key, value gjson.Result) bool {
		if key.String() == conferenceID {
			conference = value
			return false
		}
		return true
	})
	if !conference.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrConferenceNotFound, conferenceID)
	}

	var (
		entries []timetable.Entry
		err     error
	)
	conference.ForEach(func(dayKey, day gjson.Result) bool {
		date, dayErr := dateutil.ParseDayKey(dayKey.String())
		if dayErr != nil {
			err = fmt.Errorf("%w: day %q: %v", ErrInvalidResponse, dayKey.String(), dayErr)
			return false
		}
		if !days.Contains(date) {
			return true
		}
		day.ForEach(func(key, raw gjson.Result) bool {
			var parsed []timetable.Entry
			parsed, err = parseEntry(key.String(), raw, timetable.TopLevel)
			entries = append(entries, parsed...)
			return err == nil
		})
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// parseEntry converts one exported entry, and the children of a session
// block, into timetable entries.
func parseEntry(key string, raw gjson.Result, parentID string) ([]timetable.Entry, error) {
	id := raw.Get("id").String()
	if id == "" {
		id = key
	}

	kind, err := timetable.ParseKind(raw.Get("entryType").String())
	if err != nil {
		return nil, &timetable.MalformedTimetableError{EntryID: id, Reason: err.Error()}
	}
	start, err := parseExportTime(raw.Get("startDate"))
	if err != nil {
		return nil, &timetable.MalformedTimetableError{EntryID: id, Reason: "start: " + err.Error()}
	}
	end, err := parseExportTime(raw.Get("endDate"))
	if err != nil {
		return nil, &timetable.MalformedTimetableError{EntryID: id, Reason: "end: " + err.Error()}
	}

	entry := timetable.Entry{
		ID:             id,
		Kind:           kind,
		Start:          start,
		End:            end,
		ParentID:       parentID,
		Title:          entryTitle(raw),
		ContributionID: raw.Get("contributionId").String(),
		FriendlyID:     raw.Get("friendlyId").String(),
		Room:           room(raw),
		Speakers:       speakers(raw),
	}

	result := []timetable.Entry{entry}
	if kind != timetable.KindSessionBlock {
		return result, nil
	}

	raw.Get("entries").ForEach(func(childKey, child gjson.Result) bool {
		var children []timetable.Entry
		children, err = parseEntry(childKey.String(), child, id)
		result = append(result, children...)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parseExportTime reads a {"date", "time", "tz"} object.
// Unknown time zones fall back to UTC.
func parseExportTime(r gjson.Result) (time.Time, error) {
	date := r.Get("date").String()
	clock := r.Get("time").String()
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("missing date or time")
	}
	if len(clock) == len("15:04") {
		clock += ":00"
	}

	loc := time.UTC
	if tz := r.Get("tz").String(); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	t, err := time.ParseInLocation(exportLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", date+" "+clock, err)
	}
	return t, nil
}

func entryTitle(raw gjson.Result) string {
	title := strings.TrimSpace(raw.Get("title").String())
	slot := strings.TrimSpace(raw.Get("slotTitle").String())
	switch {
	case title == "":
		return slot
	case slot == "" || slot == title:
		return title
	default:
		return title + ": " + slot
	}
}

// room returns the room name, falling back to its full name.
func room(raw gjson.Result) string {
	if name := strings.TrimSpace(raw.Get("room").String()); name != "" {
		return name
	}
	return strings.TrimSpace(raw.Get("roomFullname").String())
}

// speakerFields are the person lists of an export entry that count as its
// speakers. "speakers" is the legacy name of "presenters".
var speakerFields = []string{"presenters", "speakers", "primaryauthors", "coauthors"}

// speakers lists the presenters and authors of an entry by e-mail, or by name
// when no e-mail is set. A person listed twice is reported once.
func speakers(raw gjson.Result) []string {
	var result []string
	seen := make(map[string]bool)
	for _, field := range speakerFields {
		raw.Get(field).ForEach(func(_, p gjson.Result) bool {
			who := strings.TrimSpace(p.Get("email").String())
			if who == "" {
				who = strings.TrimSpace(p.Get("name").String())
			}
			if key := strings.ToLower(who); who != "" && !seen[key] {
				seen[key] = true
				result = append(result, who)
			}
			return true
		})
	}
	return result
}
