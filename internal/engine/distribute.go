package engine

// Distribute assigns a week in [1, weeks] to every item.
//
// Items are dealt round-robin from a cursor starting at week 1. Before
// placing an item the cursor skips weeks holding maxCap or more items, but
// gives up after one full lap and places the item where it stands, so when
// every week is full the cap is exceeded rather than items being dropped.
//
// minCap is accepted for compatibility and not enforced: nothing rebalances
// weeks that end up below it.
//
// The result lists week 1's items first, then week 2's, and so on, each in
// placement order.
func Distribute(items []Item, weeks, minCap, maxCap int) []Item {
	if weeks < 1 {
		weeks = 1
	}

	buckets := make([][]Item, weeks)
	w := 0
	for _, it := range items {
		for tried := 0; tried < weeks && len(buckets[w]) >= maxCap; tried++ {
			w = (w + 1) % weeks
		}
		buckets[w] = append(buckets[w], it)
		w = (w + 1) % weeks
	}

	out := make([]Item, 0, len(items))
	for i, bucket := range buckets {
		for _, it := range bucket {
			it.Week = i + 1
			out = append(out, it)
		}
	}
	return out
}
