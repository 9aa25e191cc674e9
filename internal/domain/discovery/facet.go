package discovery

import (
	"sort"
	"strconv"
)

// FacetCount is one value→count pair in a facet histogram.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets holds a value→count histogram per filterable dimension, computed
// over the final, already-filtered item set. Facets are always built fresh
// per response so they reflect exactly what the caller can select next.
type Facets struct {
	ActivityTypes      []FacetCount `json:"activity_types,omitempty"`
	Tags               []FacetCount `json:"tags,omitempty"`
	Traits             []FacetCount `json:"traits,omitempty"`
	TaxonomyCategories []FacetCount `json:"taxonomy_categories,omitempty"`
	PriceLevels        []FacetCount `json:"price_levels,omitempty"`
	Capacity           []FacetCount `json:"capacity_key,omitempty"`
	Window             []FacetCount `json:"time_window,omitempty"`
}

// BuildFacets computes all facet histograms for an item list.
func BuildFacets(items []Item) Facets {
	types := map[string]int{}
	tags := map[string]int{}
	traits := map[string]int{}
	cats := map[string]int{}
	prices := map[string]int{}
	caps := map[string]int{}
	windows := map[string]int{}

	for _, it := range items {
		countAll(types, it.ActivityTypes)
		countAll(tags, it.Tags)
		countAll(traits, it.Traits)
		countAll(cats, it.TaxonomyCategories)
		for _, p := range it.PriceLevels {
			prices[strconv.Itoa(p)]++
		}
		if it.Capacity != "" {
			caps[string(it.Capacity)]++
		}
		if it.Window != "" {
			windows[string(it.Window)]++
		}
	}

	return Facets{
		ActivityTypes:      toCounts(types),
		Tags:               toCounts(tags),
		Traits:             toCounts(traits),
		TaxonomyCategories: toCounts(cats),
		PriceLevels:        toCounts(prices),
		Capacity:           toCounts(caps),
		Window:             toCounts(windows),
	}
}

func countAll(m map[string]int, values []string) {
	for _, v := range values {
		m[v]++
	}
}

// toCounts flattens a histogram map into a list sorted by count descending,
// then value ascending.
func toCounts(m map[string]int) []FacetCount {
	if len(m) == 0 {
		return nil
	}
	out := make([]FacetCount, 0, len(m))
	for v, c := range m {
		out = append(out, FacetCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
