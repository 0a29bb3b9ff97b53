package domain

import (
	period "github.com/nholding/rate-calendar/internal/period/domain"
)

// SameRateOverlaps lists entries of equal rate whose periods still overlap.
// After Resolve on a chronologically sorted list it is expected to be empty;
// anything it returns is a merge the forward-only scan missed.
func SameRateOverlaps(entries []*Entry) []string {
	groups := make(map[string][]period.Period)
	var order []string

	for _, e := range entries {
		key := e.Rate.String()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e.Period)
	}

	var found []string
	for _, key := range order {
		periods := groups[key]
		for _, o := range period.DetectOverlaps(periods) {
			found = append(found, "rate "+key+": "+period.DescribeOverlap(periods, o))
		}
	}
	return found
}
