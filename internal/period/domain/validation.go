package domain

import (
	"fmt"
	"sort"
	"time"
)

// Overlap names two periods, by their index in the slice handed to
// DetectOverlaps, that intersect.
type Overlap struct {
	First  int
	Second int
}

// DetectOverlaps
// reports overlapping periods inside one group of periods.
//
// HOW IT WORKS:
//   - Order the indexes by Start (stable, so equal starts keep input order)
//   - Walk the ordered list keeping the period that reaches furthest right
//   - If the current period starts on or before that reach → OVERLAP
//
// Touching periods count as overlapping, the same closed-interval rule as
// Period.Overlaps. Each overlapping period is reported once, paired with the
// earlier period that reaches furthest.
//
// EXAMPLE USAGE:
//
//	overlaps := DetectOverlaps([]Period{jan1to10, feb1to5, jan5to20})
//
// EXPECTED OUTPUT:
//
//	[]Overlap{{First: 0, Second: 2}}
func DetectOverlaps(periods []Period) []Overlap {
	if len(periods) < 2 {
		return nil
	}

	order := make([]int, len(periods))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return periods[order[a]].StartsBefore(periods[order[b]])
	})

	var overlaps []Overlap
	reach := order[0]
	for _, idx := range order[1:] {
		curr := periods[idx]
		if !curr.Start.After(periods[reach].End) {
			first, second := reach, idx
			if first > second {
				first, second = second, first
			}
			overlaps = append(overlaps, Overlap{First: first, Second: second})
		}
		if curr.End.After(periods[reach].End) {
			reach = idx
		}
	}

	return overlaps
}

// DescribeOverlap renders an overlap for log lines and diagnostics.
//
//	"[2021-01-01, 2021-01-10] overlaps with [2021-01-05, 2021-01-15]"
func DescribeOverlap(periods []Period, o Overlap) string {
	return fmt.Sprintf("%s overlaps with %s", periods[o.First], periods[o.Second])
}

// Utility to format time for nicer error messages
func fmtDate(t time.Time) string {
	return t.Format(DateLayout)
}
