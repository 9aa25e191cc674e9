package discover

import (
	"context"
	"sort"
	"strings"

	"github.com/kailas-cloud/placedex/internal/domain/discovery"
	"github.com/kailas-cloud/placedex/internal/metrics"
)

// VenueOptions control one venues call.
type VenueOptions struct {
	BypassCache       bool
	IncludeUnverified bool
	Debug             bool
}

// VenueDebug carries observability fields for venue discovery.
type VenueDebug struct {
	CacheKey        string         `json:"cache_key"`
	TileKey         string         `json:"tile_key"`
	SourceBreakdown map[string]int `json:"source_breakdown"`
	Degraded        bool           `json:"degraded"`
}

// NearbyVenues runs the discovery pipeline for the venues kind and groups
// the resulting items into distinct physical places. When activityName is
// non-empty only items matching that activity contribute. Venues known to be
// unverified are dropped unless IncludeUnverified is set; venues of unknown
// verification are kept.
func (s *Service) NearbyVenues(
	ctx context.Context, q discovery.Query, activityName string, opts VenueOptions,
) (discovery.Result, []discovery.Venue, *VenueDebug) {
	metrics.DiscoveryRequestsTotal.WithLabelValues(string(discovery.KindVenues)).Inc()

	result, pool := s.discover(ctx, discovery.KindVenues, q, opts.BypassCache)

	if activityName != "" {
		pool = filterByActivity(pool, activityName)
	}
	venues := groupVenues(pool, opts.IncludeUnverified)

	var debug *VenueDebug
	if opts.Debug {
		debug = &VenueDebug{
			CacheKey:        result.Cache.Key,
			TileKey:         q.TileKey(),
			SourceBreakdown: result.SourceBreakdown,
			Degraded:        result.Degraded,
		}
	}
	return result, venues, debug
}

// filterByActivity keeps items whose name or activity types mention the
// requested activity, case-insensitively.
func filterByActivity(items []discovery.Item, activityName string) []discovery.Item {
	needle := strings.ToLower(strings.TrimSpace(activityName))
	if needle == "" {
		return items
	}
	out := make([]discovery.Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			out = append(out, it)
			continue
		}
		for _, t := range it.ActivityTypes {
			if strings.Contains(strings.ToLower(t), needle) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// groupVenues aggregates items into one venue per place identity, ordered by
// distance of their nearest item.
func groupVenues(items []discovery.Item, includeUnverified bool) []discovery.Venue {
	type slot struct {
		venue    discovery.Venue
		distance float64
	}
	byPlace := make(map[string]*slot, len(items))
	order := make([]string, 0, len(items))

	for _, it := range items {
		if !includeUnverified && it.Verified != nil && !*it.Verified {
			continue
		}
		key := it.PlaceIdentity()
		if existing, ok := byPlace[key]; ok {
			existing.venue.ItemCount++
			if it.DistanceMeters < existing.distance {
				existing.distance = it.DistanceMeters
			}
			continue
		}
		label := it.VenueLabel
		if label == "" {
			label = it.Name
		}
		byPlace[key] = &slot{
			venue: discovery.Venue{
				ID:        it.PlaceID,
				Label:     label,
				Lat:       it.Lat,
				Lng:       it.Lng,
				Verified:  it.Verified,
				ItemCount: 1,
				Source:    it.Source,
			},
			distance: it.DistanceMeters,
		}
		order = append(order, key)
	}

	slots := make([]*slot, 0, len(byPlace))
	for _, key := range order {
		slots = append(slots, byPlace[key])
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].distance < slots[j].distance
	})

	venues := make([]discovery.Venue, 0, len(slots))
	for _, sl := range slots {
		venues = append(venues, sl.venue)
	}
	return venues
}
