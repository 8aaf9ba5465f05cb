// Package swap plans and executes the exchange of two timetable entries' slots.
package swap

import (
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/indico/internal/overlap"
	"github.com/javiermolinar/indico/internal/timetable"
)

// Mutation moves one entry to a new slot.
type Mutation struct {
	Entry    timetable.Entry // snapshot before the swap
	NewStart time.Time
	NewEnd   time.Time
}

// ID returns the timetable id of the mutated entry.
func (m Mutation) ID() string {
	return m.Entry.ID
}

// NewInterval returns the slot the entry moves to.
func (m Mutation) NewInterval() timetable.Interval {
	return timetable.Interval{Start: m.NewStart, End: m.NewEnd}
}

// Updated returns the entry as it looks after the mutation.
func (m Mutation) Updated() timetable.Entry {
	return m.Entry.WithTimes(m.NewStart, m.NewEnd)
}

// Plan is a validated pair of mutations, ordered by ascending entry id.
// Only NewPlan produces plans the Executor accepts.
type Plan struct {
	Mutations [2]Mutation
	validated bool
}

// Updated returns both entries as they look after the swap.
func (p *Plan) Updated() []timetable.Entry {
	return []timetable.Entry{p.Mutations[0].Updated(), p.Mutations[1].Updated()}
}

// RoomsDiffer reports whether the two entries are held in different rooms.
// A swap exchanges times only; each entry keeps its room.
func (p *Plan) RoomsDiffer() bool {
	a, b := p.Mutations[0].Entry.Room, p.Mutations[1].Entry.Room
	return a != "" && b != "" && !strings.EqualFold(a, b)
}

// Apply returns the tree as it looks after the swap. The input tree is unchanged.
func (p *Plan) Apply(tree *timetable.Tree) (*timetable.Tree, error) {
	return tree.With(p.Updated()...)
}

// NewPlan computes the swap of entries idA and idB (timetable ids).
// Each entry takes the other's start time and keeps its own duration.
// The result is validated against sibling overlap and session containment;
// no other entry is ever moved to make room. A session block can only be
// swapped while its new slot still holds every entry inside it.
func NewPlan(tree *timetable.Tree, idA, idB string) (*Plan, error) {
	a, ok := tree.Entry(idA)
	if !ok {
		return nil, &EntryNotFoundError{Kind: timetable.IDTimetable, ID: idA}
	}
	b, ok := tree.Entry(idB)
	if !ok {
		return nil, &EntryNotFoundError{Kind: timetable.IDTimetable, ID: idB}
	}
	if a.ID == b.ID {
		return nil, &UnsupportedSwapError{Entry: a, Reason: "cannot swap an entry with itself"}
	}

	newA := a.WithTimes(b.Start, b.Start.Add(a.Duration()))
	newB := b.WithTimes(a.Start, a.Start.Add(b.Duration()))

	if err := checkChildren(tree, a, newA); err != nil {
		return nil, err
	}
	if err := checkChildren(tree, b, newB); err != nil {
		return nil, err
	}

	if a.ParentID == b.ParentID {
		if err := checkSiblings(tree, a.ParentID, a, newA, b, newB); err != nil {
			return nil, err
		}
		if parent, ok := tree.Entry(a.ParentID); ok {
			for _, pair := range [][2]timetable.Entry{{a, newA}, {b, newB}} {
				if !parent.Interval().Contains(pair[1].Interval()) {
					return nil, &SwapContainmentError{Entry: pair[0], Proposed: pair[1].Interval(), Parent: parent}
				}
			}
		}
	} else {
		if err := checkContext(tree, a, newA, b); err != nil {
			return nil, err
		}
		if err := checkContext(tree, b, newB, a); err != nil {
			return nil, err
		}
		if err := checkSiblings(tree, a.ParentID, a, newA); err != nil {
			return nil, err
		}
		if err := checkSiblings(tree, b.ParentID, b, newB); err != nil {
			return nil, err
		}
	}

	ma := Mutation{Entry: a, NewStart: newA.Start, NewEnd: newA.End}
	mb := Mutation{Entry: b, NewStart: newB.Start, NewEnd: newB.End}
	if strings.Compare(ma.ID(), mb.ID()) > 0 {
		ma, mb = mb, ma
	}

	return &Plan{Mutations: [2]Mutation{ma, mb}, validated: true}, nil
}

// checkSiblings substitutes the moved entries into the sibling group under
// parentID and sweeps it. moves alternates original, candidate.
// Conflicts with a third sibling are reported before conflicts between the
// moved entries themselves; overlaps among untouched siblings are ignored.
func checkSiblings(tree *timetable.Tree, parentID string, moves ...timetable.Entry) error {
	originals := make(map[string]timetable.Entry, len(moves)/2)
	candidates := make(map[string]timetable.Entry, len(moves)/2)
	for i := 0; i+1 < len(moves); i += 2 {
		originals[moves[i].ID] = moves[i]
		candidates[moves[i+1].ID] = moves[i+1]
	}

	group := tree.Children(parentID)
	for i, e := range group {
		if c, ok := candidates[e.ID]; ok {
			group[i] = c
		}
	}

	var pairConflict error
	for _, f := range overlap.Sweep(group) {
		_, aMoved := candidates[f.A.ID]
		_, bMoved := candidates[f.B.ID]
		switch {
		case aMoved && bMoved:
			if pairConflict == nil {
				pairConflict = &SwapConflictError{Entry: originals[f.A.ID], Proposed: f.A.Interval(), Conflict: f.B}
			}
		case aMoved:
			return &SwapConflictError{Entry: originals[f.A.ID], Proposed: f.A.Interval(), Conflict: f.B}
		case bMoved:
			return &SwapConflictError{Entry: originals[f.B.ID], Proposed: f.B.Interval(), Conflict: f.A}
		}
	}
	return pairConflict
}

// checkChildren rejects moving an entry away from the entries nested in it.
// Children keep their times, so they must still fit the candidate slot.
func checkChildren(tree *timetable.Tree, entry, candidate timetable.Entry) error {
	for _, child := range tree.Children(entry.ID) {
		if !candidate.Interval().Contains(child.Interval()) {
			return &UnsupportedSwapError{
				Entry: entry,
				Reason: fmt.Sprintf("%s (%s) would be left outside the new slot %s; nested entries are not moved",
					child.ID, formatInterval(child.Interval()), formatInterval(candidate.Interval())),
			}
		}
	}
	return nil
}

// checkContext validates an entry moving into the slot of an entry from
// another session. The slot must lie in the other entry's session and,
// since sessions are never reassigned, in the entry's own session too.
func checkContext(tree *timetable.Tree, entry, candidate, other timetable.Entry) error {
	ownParent, hasOwn := tree.Parent(entry)
	if hasOwn && !ownParent.Interval().Contains(candidate.Interval()) {
		return &UnsupportedSwapError{
			Entry: entry,
			Reason: fmt.Sprintf("slot %s lies outside its session %s; the swap would require moving it to another session",
				formatInterval(candidate.Interval()), ownParent.ID),
		}
	}

	foreignParent, hasForeign := tree.Parent(other)
	if hasForeign && !foreignParent.Interval().Contains(candidate.Interval()) {
		return &SwapContainmentError{Entry: entry, Proposed: candidate.Interval(), Parent: foreignParent}
	}
	return nil
}
