// Package discover orchestrates the end-to-end discovery round-trip:
// normalize, cache lookup, tiered source fallback, merge/dedupe, metadata
// hydration, re-filter, ordering, facets, and the async cache write.
package discover

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placedex/internal/domain/discovery"
	"github.com/kailas-cloud/placedex/internal/metrics"
)

// Service runs discovery requests. It always returns a best-effort result,
// never an error, once the primary adapter has been attempted.
type Service struct {
	adapters  []SourceAdapter
	schedules ScheduleReader
	cache     TileCache
	logger    *zap.Logger
	now       func() time.Time
	lookahead time.Duration
}

// New creates a discovery service. Adapters are tried in slice order; the
// first is the primary, the rest are fallbacks invoked only while the merged
// set is short of the query limit.
func New(adapters []SourceAdapter, schedules ScheduleReader, cache TileCache, logger *zap.Logger) *Service {
	return &Service{
		adapters:  adapters,
		schedules: schedules,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
		lookahead: scheduleLookahead,
	}
}

// WithClock overrides the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithLookahead overrides the schedule join window.
func (s *Service) WithLookahead(d time.Duration) *Service {
	if d > 0 {
		s.lookahead = d
	}
	return s
}

// Options control one activities call.
type Options struct {
	BypassCache bool
}

// NearbyActivities runs one discovery round-trip for activities.
func (s *Service) NearbyActivities(ctx context.Context, q discovery.Query, opts Options) discovery.Result {
	metrics.DiscoveryRequestsTotal.WithLabelValues(string(discovery.KindActivities)).Inc()
	result, _ := s.discover(ctx, discovery.KindActivities, q, opts.BypassCache)
	return result
}

// discover is the shared pipeline for both entry points. It returns the
// result plus the final (pre-slice) item set for venue grouping.
func (s *Service) discover(
	ctx context.Context, kind discovery.Kind, q discovery.Query, bypassCache bool,
) (discovery.Result, []discovery.Item) {
	cacheKey := q.CacheKey(kind)
	tileKey := q.TileKey()

	if bypassCache {
		metrics.DiscoveryCacheTotal.WithLabelValues("bypass").Inc()
	} else if entry, ok := s.cache.Read(ctx, tileKey, cacheKey); ok {
		metrics.DiscoveryCacheTotal.WithLabelValues("hit").Inc()
		return s.fromCache(q, cacheKey, entry)
	} else {
		metrics.DiscoveryCacheTotal.WithLabelValues("miss").Inc()
	}

	items, support, source, degraded, fallbackErr := s.runAdapters(ctx, &q)

	if supportOK := s.hydrate(ctx, items); !supportOK {
		support.PriceLevels = false
		support.Capacity = false
		support.Window = false
	}

	filtered := discovery.FilterItems(items, q.Filters)
	discovery.SortItems(filtered)

	cached := filtered
	final := filtered
	if len(final) > q.Limit {
		final = final[:q.Limit]
	}

	breakdown := discovery.SourceBreakdown(final)
	for src, n := range breakdown {
		metrics.DiscoveryAdapterItemsTotal.WithLabelValues(src).Add(float64(n))
	}
	if degraded {
		metrics.DiscoveryDegradedTotal.Inc()
	}

	entry := discovery.CacheEntry{
		CachedAt:        s.now(),
		ExpiresAt:       s.now().Add(s.cache.TTL()),
		Items:           cached,
		FilterSupport:   support,
		SourceBreakdown: discovery.SourceBreakdown(cached),
		Source:          source,
	}
	// Fire-and-forget: a slow or failing cache write must not add latency or
	// failure modes to the caller.
	go s.cache.Write(context.WithoutCancel(ctx), tileKey, cacheKey, entry)

	return discovery.Result{
		Center:          q.Center,
		RadiusMeters:    q.RadiusMeters,
		Count:           len(final),
		Items:           final,
		FilterSupport:   support,
		Facets:          discovery.BuildFacets(final),
		SourceBreakdown: breakdown,
		Cache:           discovery.CacheInfo{Key: cacheKey, Hit: false},
		Source:          source,
		Degraded:        degraded,
		FallbackError:   fallbackErr,
	}, filtered
}

// fromCache serves a hit. The current call's filters and limit are
// re-applied against the cached item set; with filters part of the cache key
// this re-filter is an identity pass, kept so hit and miss responses flow
// through the same code path and stay byte-equal.
func (s *Service) fromCache(
	q discovery.Query, cacheKey string, entry *discovery.CacheEntry,
) (discovery.Result, []discovery.Item) {
	filtered := discovery.FilterItems(entry.Items, q.Filters)
	discovery.SortItems(filtered)

	final := filtered
	if len(final) > q.Limit {
		final = final[:q.Limit]
	}

	return discovery.Result{
		Center:          q.Center,
		RadiusMeters:    q.RadiusMeters,
		Count:           len(final),
		Items:           final,
		FilterSupport:   entry.FilterSupport,
		Facets:          discovery.BuildFacets(final),
		SourceBreakdown: discovery.SourceBreakdown(final),
		Cache:           discovery.CacheInfo{Key: cacheKey, Hit: true},
		Source:          entry.Source,
	}, filtered
}

// runAdapters walks the source chain in priority order. Fallback adapters
// are invoked only while the merged set is short of the limit; their items
// are merged by place identity, never appended blindly. Support is combined
// by AND across adapters that actually contributed items.
func (s *Service) runAdapters(
	ctx context.Context, q *discovery.Query,
) (items []discovery.Item, support discovery.FilterSupport, source string, degraded bool, fallbackErr string) {
	support = discovery.FullSupport()
	source = "none"

	for i, adapter := range s.adapters {
		if i > 0 && len(items) >= q.Limit {
			break
		}

		sr, err := adapter.Fetch(ctx, q)
		if err != nil {
			if i == 0 {
				s.logger.Warn("primary adapter failed",
					zap.String("source", adapter.Name()), zap.Error(err))
			} else {
				s.logger.Warn("fallback adapter failed, continuing degraded",
					zap.String("source", adapter.Name()), zap.Error(err))
				degraded = true
				fallbackErr = err.Error()
			}
			continue
		}

		sr.Items = discovery.DropInvalid(sr.Items)
		if len(sr.Items) == 0 {
			continue
		}

		before := len(items)
		items = discovery.MergeByPlace(items, sr.Items)
		if len(items) > before {
			support = support.And(sr.Support)
			if source == "none" {
				source = sr.Source
			}
		}
	}
	return items, support, source, degraded, fallbackErr
}
