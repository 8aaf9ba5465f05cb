package timetable

import "time"

// Interval is a closed time span [Start, End].
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid returns true if the interval has positive length.
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Duration returns the interval length.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps returns true if the two intervals share more than an endpoint.
// Two intervals overlap if: start1 < end2 AND start2 < end1
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains returns true if other lies entirely within i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Shift returns an interval of the same length starting at start.
func (i Interval) Shift(start time.Time) Interval {
	return Interval{Start: start, End: start.Add(i.Duration())}
}
