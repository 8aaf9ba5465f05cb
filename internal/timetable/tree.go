package timetable

import (
	"fmt"
	"slices"
	"strings"
)

// TopLevel is the parent key of entries without an enclosing session block.
const TopLevel = ""

// IDKind selects which identifier an operator used to name an entry.
type IDKind string

const (
	IDTimetable    IDKind = "tid" // timetable entry id, "c4051" or "4051"
	IDContribution IDKind = "cid" // contribution id
	IDFriendly     IDKind = "aid" // friendly id shown in the Indico UI
)

// ParseIDKind parses "tid", "cid" or "aid". Empty defaults to cid.
func ParseIDKind(s string) (IDKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cid":
		return IDContribution, nil
	case "tid":
		return IDTimetable, nil
	case "aid":
		return IDFriendly, nil
	default:
		return "", fmt.Errorf("id type must be 'cid', 'tid' or 'aid', got %q", s)
	}
}

// Label returns a human-readable name for the id kind.
func (k IDKind) Label() string {
	switch k {
	case IDTimetable:
		return "timetable entry"
	case IDContribution:
		return "contribution"
	case IDFriendly:
		return "friendly id"
	default:
		return "entry"
	}
}

// Tree is a conference timetable arranged by parent.
// Structural links are held in lookup tables keyed by id, never as
// references between entries. A Tree is immutable once built.
type Tree struct {
	entries  map[string]Entry
	children map[string][]Entry // sorted by Start, then ID
}

// Build assembles a flat entry list into a Tree.
// Returns a MalformedTimetableError if an entry references a missing or
// non-session parent, has a non-positive length, or repeats an id.
func Build(entries []Entry) (*Tree, error) {
	t := &Tree{
		entries:  make(map[string]Entry, len(entries)),
		children: make(map[string][]Entry),
	}

	for _, e := range entries {
		if e.ID == "" {
			return nil, &MalformedTimetableError{EntryID: "<empty>", Reason: "missing id"}
		}
		if _, dup := t.entries[e.ID]; dup {
			return nil, &MalformedTimetableError{EntryID: e.ID, Reason: "duplicate id"}
		}
		if !e.Interval().Valid() {
			return nil, &MalformedTimetableError{
				EntryID: e.ID,
				Reason:  fmt.Sprintf("end %s is not after start %s", e.End.Format("15:04"), e.Start.Format("15:04")),
			}
		}
		t.entries[e.ID] = e
	}

	for _, e := range entries {
		if e.ParentID != TopLevel {
			parent, ok := t.entries[e.ParentID]
			if !ok {
				return nil, &MalformedTimetableError{
					EntryID: e.ID,
					Reason:  fmt.Sprintf("parent %s not present in timetable", e.ParentID),
				}
			}
			if parent.Kind != KindSessionBlock {
				return nil, &MalformedTimetableError{
					EntryID: e.ID,
					Reason:  fmt.Sprintf("parent %s is a %s, not a session block", parent.ID, parent.Kind),
				}
			}
		}
		t.children[e.ParentID] = append(t.children[e.ParentID], e)
	}

	for _, group := range t.children {
		SortEntries(group)
	}

	// Entries on a parent cycle are unreachable from the top level.
	if reached := t.Entries(); len(reached) != len(t.entries) {
		seen := make(map[string]bool, len(reached))
		for _, e := range reached {
			seen[e.ID] = true
		}
		for _, e := range entries {
			if !seen[e.ID] {
				return nil, &MalformedTimetableError{EntryID: e.ID, Reason: "parent chain forms a cycle"}
			}
		}
	}

	return t, nil
}

// Len returns the number of entries.
func (t *Tree) Len() int {
	return len(t.entries)
}

// Entry returns the entry with the given timetable id.
func (t *Tree) Entry(id string) (Entry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

// Parent returns the enclosing session block of e.
func (t *Tree) Parent(e Entry) (Entry, bool) {
	if e.IsTopLevel() {
		return Entry{}, false
	}
	return t.Entry(e.ParentID)
}

// Children returns a copy of the sibling group under parentID.
func (t *Tree) Children(parentID string) []Entry {
	return slices.Clone(t.children[parentID])
}

// ParentIDs returns the keys of all sibling groups: TopLevel first,
// then session blocks in timetable order.
func (t *Tree) ParentIDs() []string {
	ids := make([]string, 0, len(t.children))
	for id := range t.children {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == TopLevel:
			return -1
		case b == TopLevel:
			return 1
		}
		return compareEntries(t.entries[a], t.entries[b])
	})
	return ids
}

// Depth returns the nesting depth of the entry (0 for top level).
// Returns -1 if the id is unknown.
func (t *Tree) Depth(id string) int {
	e, ok := t.entries[id]
	if !ok {
		return -1
	}
	depth := 0
	for !e.IsTopLevel() {
		depth++
		e = t.entries[e.ParentID]
	}
	return depth
}

// Entries returns all entries in display order: each top-level entry
// followed by its children, depth first.
func (t *Tree) Entries() []Entry {
	result := make([]Entry, 0, len(t.entries))
	var walk func(parentID string)
	walk = func(parentID string) {
		for _, e := range t.children[parentID] {
			result = append(result, e)
			walk(e.ID)
		}
	}
	walk(TopLevel)
	return result
}

// Resolve finds an entry by the given identifier kind.
// Returns an EntryNotFoundError if nothing matches.
func (t *Tree) Resolve(kind IDKind, value string) (Entry, error) {
	value = strings.TrimSpace(value)
	for _, e := range t.Entries() {
		var match bool
		switch kind {
		case IDTimetable:
			match = e.ID == value || e.TimetableID() == value
		case IDContribution:
			match = e.ContributionID != "" && e.ContributionID == value
		case IDFriendly:
			match = e.FriendlyID != "" && e.FriendlyID == value
		}
		if match {
			return e, nil
		}
	}
	return Entry{}, &EntryNotFoundError{Kind: kind, ID: value}
}

// With returns a new Tree where the given entries replace those with the same id.
func (t *Tree) With(updated ...Entry) (*Tree, error) {
	replace := make(map[string]Entry, len(updated))
	for _, u := range updated {
		if _, ok := t.entries[u.ID]; !ok {
			return nil, &EntryNotFoundError{Kind: IDTimetable, ID: u.ID}
		}
		replace[u.ID] = u
	}

	entries := t.Entries()
	for i, e := range entries {
		if u, ok := replace[e.ID]; ok {
			entries[i] = u
		}
	}
	return Build(entries)
}
