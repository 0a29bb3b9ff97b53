package domain

// Resolve
// folds overlapping same-rate entries together and reports overlapping
// entries whose rates differ.
//
// HOW IT WORKS:
//   - A cursor i walks the (shrinking) list from the front
//   - For fixed i, every later entry j is compared with entry i:
//   - overlap + same rate → entry i grows to the union, j is dropped
//   - overlap + other rate → Conflict{i, j}, both stay
//   - If any j was dropped, the list is compacted and the scan for the
//     same i starts over; otherwise i moves on
//
// The scan only ever looks forward from i. Every pass over j reports its
// conflicts, so a pair that conflicts during a pass that also merged is
// reported again by the repeated pass. Both behaviours are part of the
// output contract and kept as is.
//
// Entries are extended in place. The returned slice is a new slice; the
// input slice is left in its original order and length.
//
// The restart makes the worst case roughly cubic in the number of entries.
//
// Example:
//
//	[2021-01-01..2021-01-10 @5] [2021-01-05..2021-01-15 @5]
//	→ [2021-01-01..2021-01-15 @5], no conflicts
//
//	[2021-01-01..2021-01-10 @5] [2021-01-05..2021-01-15 @7]
//	→ both entries, Conflict{first, second}
func Resolve(entries []*Entry) ([]*Entry, []Conflict) {
	list := make([]*Entry, len(entries))
	copy(list, entries)

	var conflicts []Conflict

	for i := 0; i < len(list); {
		current := list[i]
		dropped := make([]bool, len(list))
		merged := false

		for j := i + 1; j < len(list); j++ {
			other := list[j]
			if !current.Period.Overlaps(other.Period) {
				continue
			}

			if current.SameRate(other) {
				current.Period = current.Period.Union(other.Period)
				dropped[j] = true
				merged = true
				continue
			}

			conflicts = append(conflicts, Conflict{First: current.Source, Second: other.Source})
		}

		if !merged {
			i++
			continue
		}

		list = compact(list, dropped)
	}

	return list, conflicts
}

// compact removes the dropped positions and re-indexes the list.
func compact(list []*Entry, dropped []bool) []*Entry {
	kept := list[:0]
	for idx, e := range list {
		if !dropped[idx] {
			kept = append(kept, e)
		}
	}
	clear(list[len(kept):])
	return kept
}
