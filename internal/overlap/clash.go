package overlap

import (
	"fmt"
	"slices"
	"strings"

	"github.com/javiermolinar/indico/internal/timetable"
)

// Resource selects what clash detection groups contributions by.
type Resource string

const (
	BySibling Resource = "sibling"
	BySpeaker Resource = "speaker"
	ByRoom    Resource = "room"
)

// ParseResource parses "sibling", "speaker" or "room". Empty defaults to sibling.
func ParseResource(s string) (Resource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sibling":
		return BySibling, nil
	case "speaker", "author":
		return BySpeaker, nil
	case "room":
		return ByRoom, nil
	default:
		return "", fmt.Errorf("must be 'sibling', 'speaker' or 'room', got %q", s)
	}
}

// FindClashes reports contributions that share a speaker or a room at the
// same time, across the whole timetable regardless of nesting.
func FindClashes(tree *timetable.Tree, by Resource) []Finding {
	kind := KindRoomClash
	if by == BySpeaker {
		kind = KindSpeakerClash
	}

	groups := make(map[string][]timetable.Entry)
	for _, e := range tree.Entries() {
		if e.Kind != timetable.KindContribution {
			continue
		}
		for _, key := range resourceKeys(e, by) {
			groups[key] = append(groups[key], e)
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var findings []Finding
	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		timetable.SortEntries(group)
		findings = append(findings, sweep(group, kind, key)...)
	}

	SortFindings(findings)
	return findings
}

func resourceKeys(e timetable.Entry, by Resource) []string {
	switch by {
	case BySpeaker:
		seen := make(map[string]bool, len(e.Speakers))
		keys := make([]string, 0, len(e.Speakers))
		for _, s := range e.Speakers {
			k := strings.ToLower(strings.TrimSpace(s))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
		return keys
	case ByRoom:
		if room := strings.TrimSpace(e.Room); room != "" {
			return []string{room}
		}
	}
	return nil
}
