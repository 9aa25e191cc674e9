package discover

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placedex/internal/domain/discovery"
	"github.com/kailas-cloud/placedex/internal/domain/discovery/filter"
	domsched "github.com/kailas-cloud/placedex/internal/domain/schedule"
)

// scheduleLookahead bounds the session join window.
const scheduleLookahead = domsched.DefaultLookahead

// taxonomyPrefix is the naming convention marking an activity type or tag as
// a taxonomy category id. Derivation is a pattern scan, never a lookup, and
// fabricates nothing absent a match.
const taxonomyPrefix = "cat:"

// uuidRe recognizes ids in primary-key format; only those are joined against
// the schedule table.
var uuidRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// hydrate joins upcoming sessions for recognizable ids and derives price,
// capacity, and time-window buckets in place, plus taxonomy categories where
// absent. It returns false when the schedule join failed entirely, in which
// case the caller must mark price/capacity/window support false for the
// whole response.
func (s *Service) hydrate(ctx context.Context, items []discovery.Item) bool {
	for i := range items {
		deriveTaxonomy(&items[i])
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if uuidRe.MatchString(it.ID) {
			ids = append(ids, it.ID)
		}
	}
	if len(ids) == 0 {
		return true
	}

	now := s.now()
	sessions, err := s.schedules.UpcomingSessions(ctx, ids, now, now.Add(s.lookahead))
	if err != nil {
		s.logger.Warn("schedule join failed, metadata support degraded", zap.Error(err))
		return false
	}

	for i := range items {
		rows, ok := sessions[items[i].ID]
		if !ok {
			continue
		}
		derived := domsched.Derive(rows, now)
		if len(items[i].PriceLevels) == 0 {
			items[i].PriceLevels = derived.PriceLevels
		}
		if items[i].Capacity == "" || items[i].Capacity == filter.CapacityAny {
			items[i].Capacity = derived.Capacity
		}
		if items[i].Window == "" || items[i].Window == filter.WindowAny {
			items[i].Window = derived.Window
		}
	}
	return true
}

// deriveTaxonomy fills TaxonomyCategories from prefix-matching activity
// types and tags when the item carries none.
func deriveTaxonomy(it *discovery.Item) {
	if len(it.TaxonomyCategories) > 0 {
		return
	}
	var cats []string
	seen := map[string]struct{}{}
	for _, list := range [][]string{it.ActivityTypes, it.Tags} {
		for _, v := range list {
			if !strings.HasPrefix(v, taxonomyPrefix) {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			cats = append(cats, v)
		}
	}
	it.TaxonomyCategories = cats
}
