// Package overlap detects scheduling conflicts in a conference timetable.
package overlap

import (
	"fmt"
	"slices"
	"strings"

	"github.com/javiermolinar/indico/internal/timetable"
)

// Kind identifies the type of a finding.
type Kind string

const (
	// KindSiblingOverlap: two entries under the same parent run at the same time.
	KindSiblingOverlap Kind = "sibling_overlap"
	// KindContainmentViolation: an entry runs outside its session block.
	KindContainmentViolation Kind = "containment_violation"
	// KindSpeakerClash: one speaker presents two contributions at the same time.
	KindSpeakerClash Kind = "speaker_clash"
	// KindRoomClash: two contributions share a room at the same time.
	KindRoomClash Kind = "room_clash"
)

// Finding is one detected conflict between two entries.
// For containment violations A is the child and B its parent.
type Finding struct {
	Kind     Kind
	A        timetable.Entry
	B        timetable.Entry
	Resource string // shared speaker or room, clashes only
}

// Involves returns true if either side of the finding has the given id.
func (f Finding) Involves(id string) bool {
	return f.A.ID == id || f.B.ID == id
}

// Other returns the side of the finding that is not id.
func (f Finding) Other(id string) timetable.Entry {
	if f.A.ID == id {
		return f.B
	}
	return f.A
}

// String returns a one-line description of the finding.
func (f Finding) String() string {
	switch f.Kind {
	case KindContainmentViolation:
		return fmt.Sprintf("%s is scheduled outside its session %s", f.A, f.B)
	case KindSpeakerClash:
		return fmt.Sprintf("speaker %s: %s conflicts with %s", f.Resource, f.A, f.B)
	case KindRoomClash:
		return fmt.Sprintf("room %s: %s conflicts with %s", f.Resource, f.A, f.B)
	default:
		return fmt.Sprintf("%s overlaps %s", f.A, f.B)
	}
}

// Find reports every sibling overlap and containment violation in the tree,
// ordered by the start of the first entry of each pair.
func Find(tree *timetable.Tree) []Finding {
	var findings []Finding

	for _, parentID := range tree.ParentIDs() {
		group := tree.Children(parentID)
		findings = append(findings, sweep(group, KindSiblingOverlap, "")...)

		parent, ok := tree.Entry(parentID)
		if !ok {
			continue
		}
		for _, child := range group {
			if !parent.Interval().Contains(child.Interval()) {
				findings = append(findings, Finding{
					Kind: KindContainmentViolation,
					A:    child,
					B:    parent,
				})
			}
		}
	}

	SortFindings(findings)
	return findings
}

// Sweep reports overlapping pairs within one sibling group.
// The input is not modified.
func Sweep(group []timetable.Entry) []Finding {
	sorted := slices.Clone(group)
	timetable.SortEntries(sorted)
	findings := sweep(sorted, KindSiblingOverlap, "")
	SortFindings(findings)
	return findings
}

// sweep compares each entry only with the entries that start before it ends.
// entries must be sorted by start and have positive length, so every pair the
// inner loop reaches overlaps.
func sweep(entries []timetable.Entry, kind Kind, resource string) []Finding {
	var findings []Finding
	for i := range entries {
		for j := i + 1; j < len(entries) && entries[j].Start.Before(entries[i].End); j++ {
			findings = append(findings, Finding{
				Kind:     kind,
				A:        entries[i],
				B:        entries[j],
				Resource: resource,
			})
		}
	}
	return findings
}

// SortFindings orders findings by the start of A, then B, then kind and ids.
func SortFindings(findings []Finding) {
	slices.SortFunc(findings, func(x, y Finding) int {
		if c := x.A.Start.Compare(y.A.Start); c != 0 {
			return c
		}
		if c := x.B.Start.Compare(y.B.Start); c != 0 {
			return c
		}
		if c := strings.Compare(string(x.Kind), string(y.Kind)); c != 0 {
			return c
		}
		if c := strings.Compare(x.A.ID, y.A.ID); c != 0 {
			return c
		}
		if c := strings.Compare(x.B.ID, y.B.ID); c != 0 {
			return c
		}
		return strings.Compare(x.Resource, y.Resource)
	})
}

// Report formats findings as plain text, one per line.
func Report(findings []Finding) string {
	if len(findings) == 0 {
		return "No conflicts found.\n"
	}
	var b strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&b, "[%s] %s\n", f.Kind, f)
	}
	return b.String()
}
