package discovery

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/placedex/internal/domain/discovery/filter"
	"github.com/kailas-cloud/placedex/internal/domain/geo"
)

// Item is a single discovered activity or venue in the canonical shape.
// Adapters convert their source-specific rows into Items at the boundary;
// nothing downstream sees raw rows.
type Item struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	VenueLabel         string             `json:"venue_label,omitempty"`
	PlaceID            string             `json:"place_id,omitempty"`
	PlaceLabel         string             `json:"place_label,omitempty"`
	Lat                float64            `json:"lat"`
	Lng                float64            `json:"lng"`
	DistanceMeters     float64            `json:"distance_meters"`
	ActivityTypes      []string           `json:"activity_types,omitempty"`
	Tags               []string           `json:"tags,omitempty"`
	Traits             []string           `json:"traits,omitempty"`
	TaxonomyCategories []string           `json:"taxonomy_categories,omitempty"`
	PriceLevels        []int              `json:"price_levels,omitempty"`
	Capacity           filter.CapacityKey `json:"capacity_key,omitempty"`
	Window             filter.TimeWindow  `json:"time_window,omitempty"`
	Verified           *bool              `json:"verified,omitempty"`
	Source             string             `json:"source"`
}

// PlaceIdentity returns the key used to recognize the same physical place
// across sources: the stable place id when present, otherwise a composite of
// the normalized name and coordinates rounded to ~11 m.
func (it Item) PlaceIdentity() string {
	if it.PlaceID != "" {
		return "p:" + it.PlaceID
	}
	name := strings.ToLower(strings.Join(strings.Fields(it.Name), " "))
	return fmt.Sprintf("n:%s:%.4f:%.4f", name, geo.Round(it.Lat, 4), geo.Round(it.Lng, 4))
}

// DropInvalid removes items with non-finite coordinates before merge.
func DropInvalid(items []Item) []Item {
	out := items[:0]
	for _, it := range items {
		if math.IsNaN(it.Lat) || math.IsInf(it.Lat, 0) ||
			math.IsNaN(it.Lng) || math.IsInf(it.Lng, 0) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// MergeByPlace combines a higher-priority list with a fallback list, keeping
// exactly one item per place identity. Primary items always win; fallback
// items are added only for unoccupied places.
func MergeByPlace(primary, fallback []Item) []Item {
	merged := make([]Item, 0, len(primary)+len(fallback))
	occupied := make(map[string]struct{}, len(primary))

	for _, it := range primary {
		key := it.PlaceIdentity()
		if _, ok := occupied[key]; ok {
			continue
		}
		occupied[key] = struct{}{}
		merged = append(merged, it)
	}
	for _, it := range fallback {
		key := it.PlaceIdentity()
		if _, ok := occupied[key]; ok {
			continue
		}
		occupied[key] = struct{}{}
		merged = append(merged, it)
	}
	return merged
}

// SortItems orders items by ascending distance, then case-sensitive name,
// then id. The ordering is stable and reproducible for identical inputs.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.DistanceMeters != b.DistanceMeters {
			return a.DistanceMeters < b.DistanceMeters
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// SourceBreakdown counts items per producing source.
func SourceBreakdown(items []Item) map[string]int {
	out := make(map[string]int, 4)
	for _, it := range items {
		out[it.Source]++
	}
	return out
}
