// Package tilecache persists discovery results per geographic tile. Each
// tile owns one hash record whose fields are cache keys and whose values are
// JSON-encoded entries. All cache failures are soft: a read error is a miss,
// a write error is logged and swallowed.
package tilecache

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placedex/internal/domain/discovery"
)

const keyPrefix = "placedex:tile:"

// Defaults applied when a Cache is constructed with zero values.
const (
	DefaultTTL        = 10 * time.Minute
	DefaultMaxEntries = 16
	DefaultMaxItems   = 50
)

// store is the consumer interface for tile persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Cache reads and writes per-tile discovery cache records.
type Cache struct {
	store      store
	ttl        time.Duration
	maxEntries int
	maxItems   int
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a tile cache. Zero ttl/maxEntries/maxItems fall back to the
// package defaults.
func New(s store, ttl time.Duration, maxEntries, maxItems int, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Cache{
		store:      s,
		ttl:        ttl,
		maxEntries: maxEntries,
		maxItems:   maxItems,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source for tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Read returns the cached entry for (tileKey, cacheKey) if present and not
// expired. Any storage error degrades to a miss.
func (c *Cache) Read(ctx context.Context, tileKey, cacheKey string) (*discovery.CacheEntry, bool) {
	record, err := c.store.HGetAll(ctx, keyPrefix+tileKey)
	if err != nil {
		c.logger.Warn("tile cache read failed, treating as miss",
			zap.String("tile", tileKey), zap.Error(err))
		return nil, false
	}

	raw, ok := record[cacheKey]
	if !ok {
		return nil, false
	}

	var entry discovery.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn("tile cache entry corrupt, treating as miss",
			zap.String("tile", tileKey), zap.Error(err))
		return nil, false
	}
	if entry.Expired(c.now()) {
		return nil, false
	}
	return &entry, true
}

// Write merges an entry into the tile's record, prunes the record to the
// max-entries bound (oldest cachedAt first), and persists with upsert
// semantics. Failures are logged and swallowed; the caller never blocks on
// or fails from a cache write.
func (c *Cache) Write(ctx context.Context, tileKey, cacheKey string, entry discovery.CacheEntry) {
	key := keyPrefix + tileKey

	if entry.CachedAt.IsZero() {
		entry.CachedAt = c.now()
	}
	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = entry.CachedAt.Add(c.ttl)
	}
	if len(entry.Items) > c.maxItems {
		entry.Items = entry.Items[:c.maxItems]
	}

	record, err := c.store.HGetAll(ctx, key)
	if err != nil {
		c.logger.Warn("tile cache record read failed before write",
			zap.String("tile", tileKey), zap.Error(err))
		record = nil
	}

	if evict := c.evictable(record, cacheKey); len(evict) > 0 {
		if err := c.store.HDel(ctx, key, evict...); err != nil {
			c.logger.Warn("tile cache eviction failed",
				zap.String("tile", tileKey), zap.Error(err))
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("tile cache entry marshal failed",
			zap.String("tile", tileKey), zap.Error(err))
		return
	}
	if err := c.store.HSet(ctx, key, map[string]string{cacheKey: string(data)}); err != nil {
		c.logger.Warn("tile cache write failed",
			zap.String("tile", tileKey), zap.Error(err))
		return
	}
	// Tile records expire a while after their newest entry so stale tiles do
	// not accumulate; per-entry TTL is still enforced on read.
	if err := c.store.Expire(ctx, key, c.ttl*2, false); err != nil {
		c.logger.Warn("tile cache expire failed",
			zap.String("tile", tileKey), zap.Error(err))
	}
}

// evictable returns the fields to delete so that after inserting cacheKey the
// record holds at most maxEntries entries. Expired and corrupt entries go
// first, then the oldest cachedAt.
func (c *Cache) evictable(record map[string]string, incoming string) []string {
	type aged struct {
		field    string
		cachedAt time.Time
	}

	var evict []string
	var live []aged
	now := c.now()

	for field, raw := range record {
		if field == incoming {
			continue
		}
		var entry discovery.CacheEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Expired(now) {
			evict = append(evict, field)
			continue
		}
		live = append(live, aged{field: field, cachedAt: entry.CachedAt})
	}

	// incoming occupies one slot
	excess := len(live) - (c.maxEntries - 1)
	if excess <= 0 {
		return evict
	}

	sort.Slice(live, func(i, j int) bool { return live[i].cachedAt.Before(live[j].cachedAt) })
	for i := 0; i < excess; i++ {
		evict = append(evict, live[i].field)
	}
	return evict
}
