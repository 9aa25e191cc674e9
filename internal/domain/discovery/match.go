package discovery

import (
	"github.com/kailas-cloud/placedex/internal/domain/discovery/filter"
)

// FilterItems re-applies a normalized filter set to an item list. Matching is
// lenient: an item that carries no data for a filtered dimension is kept, and
// the response's FilterSupport tells the caller whether the match set is
// conclusive. Dropping unknown-data items would make degraded sources vanish
// from every filtered response.
func FilterItems(items []Item, f filter.Set) []Item {
	if f.IsEmpty() {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if matches(it, f) {
			out = append(out, it)
		}
	}
	return out
}

func matches(it Item, f filter.Set) bool {
	if !anyOverlap(it.ActivityTypes, f.ActivityTypes) {
		return false
	}
	if !anyOverlap(it.Tags, f.Tags) {
		return false
	}
	if !anyOverlap(it.Traits, f.Traits) {
		return false
	}
	if !anyOverlap(it.TaxonomyCategories, f.TaxonomyCategories) {
		return false
	}
	if !priceOverlap(it.PriceLevels, f.PriceLevels) {
		return false
	}
	if f.Capacity != filter.CapacityAny && it.Capacity != "" && it.Capacity != f.Capacity {
		return false
	}
	if f.Window != filter.WindowAny && it.Window != "" && !windowMatches(it.Window, f.Window) {
		return false
	}
	return true
}

// anyOverlap passes when the filter is empty, the item has no data for the
// dimension, or at least one value is shared.
func anyOverlap(have, want []string) bool {
	if len(want) == 0 || len(have) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, v := range have {
		set[v] = struct{}{}
	}
	for _, v := range want {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

func priceOverlap(have, want []int) bool {
	if len(want) == 0 || len(have) == 0 {
		return true
	}
	set := make(map[int]struct{}, len(have))
	for _, v := range have {
		set[v] = struct{}{}
	}
	for _, v := range want {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// windowMatches treats an open-now item as matching any time-of-day filter;
// open_now itself only matches items currently open.
func windowMatches(have, want filter.TimeWindow) bool {
	if have == want {
		return true
	}
	return have == filter.WindowOpenNow && want != filter.WindowOpenNow
}
