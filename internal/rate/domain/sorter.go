package domain

import (
	"sort"
)

// SortChronologically orders entries by period start, earliest first.
// Entries that start on the same day keep their validation order, which
// keeps merge order, and so the output, deterministic.
func SortChronologically(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Period.StartsBefore(entries[j].Period)
	})
}
