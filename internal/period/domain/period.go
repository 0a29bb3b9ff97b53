package domain

import (
	"time"
)

// DateLayout is the calendar-date rendering used for every period boundary
// that leaves the engine.
const DateLayout = "2006-01-02"

// Period is a closed [Start, End] range of calendar days in a single, fixed
// location. Boundaries are midnights as returned by Parse, both inclusive,
// and Start never comes after End.
//
// Two periods that merely touch (one ends on the day the other starts)
// overlap.
//
// Example:
//
//	jan := New(jan1, jan10)
//	mid := New(jan10, jan15)
//	jan.Overlaps(mid) // → true, the shared day counts
//	jan.Union(mid)    // → [jan1, jan15]
type Period struct {
	Start time.Time // inclusive
	End   time.Time // inclusive
}

// New builds a Period from two boundaries, swapping them when they are given
// in reverse order.
func New(start, end time.Time) Period {
	if start.After(end) {
		start, end = end, start
	}
	return Period{Start: start, End: end}
}

// Point returns the single-day Period [t, t]. A record that only carries
// one of its boundaries becomes a point period.
func Point(t time.Time) Period {
	return Period{Start: t, End: t}
}

// Overlaps reports whether the two closed intervals intersect:
//
//	p.Start <= o.End && o.Start <= p.End
func (p Period) Overlaps(o Period) bool {
	return !o.Start.After(p.End) && !p.Start.After(o.End)
}

// Union returns the smallest Period covering both p and o.
//
// Union does not check for overlap; callers merge only overlapping periods.
func (p Period) Union(o Period) Period {
	u := p
	if o.Start.Before(u.Start) {
		u.Start = o.Start
	}
	if o.End.After(u.End) {
		u.End = o.End
	}
	return u
}

// Contains checks if t lies inside the period, boundaries included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// StartsBefore orders periods by their start day.
func (p Period) StartsBefore(o Period) bool {
	return p.Start.Before(o.Start)
}

// StartDate renders the start boundary as YYYY-MM-DD in the period's location.
func (p Period) StartDate() string {
	return fmtDate(p.Start)
}

// EndDate renders the end boundary as YYYY-MM-DD in the period's location.
func (p Period) EndDate() string {
	return fmtDate(p.End)
}

func (p Period) String() string {
	return "[" + fmtDate(p.Start) + ", " + fmtDate(p.End) + "]"
}
