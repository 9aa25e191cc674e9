package discovery

import (
	"time"

	"github.com/kailas-cloud/placedex/internal/domain/geo"
)

// CacheInfo reports the cache key used for the call and whether it hit.
type CacheInfo struct {
	Key string `json:"key"`
	Hit bool   `json:"hit"`
}

// Result is the full discovery response for one request.
type Result struct {
	Center          geo.Point      `json:"center"`
	RadiusMeters    float64        `json:"radius_meters"`
	Count           int            `json:"count"`
	Items           []Item         `json:"items"`
	FilterSupport   FilterSupport  `json:"filter_support"`
	Facets          Facets         `json:"facets"`
	SourceBreakdown map[string]int `json:"source_breakdown"`
	Cache           CacheInfo      `json:"cache"`
	Source          string         `json:"source"`
	Degraded        bool           `json:"degraded,omitempty"`
	FallbackError   string         `json:"fallback_error,omitempty"`
}

// Venue is a distinct physical place aggregated from discovery items.
type Venue struct {
	ID        string  `json:"id,omitempty"`
	Label     string  `json:"label"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Verified  *bool   `json:"verified,omitempty"`
	ItemCount int     `json:"item_count"`
	Source    string  `json:"source"`
}

// CacheEntry is one cached discovery pull, stored inside a per-tile record
// keyed by cache key. Expired entries are treated as absent on read and
// overwritten lazily on the next write.
type CacheEntry struct {
	CachedAt        time.Time      `json:"cached_at"`
	ExpiresAt       time.Time      `json:"expires_at"`
	Items           []Item         `json:"items"`
	FilterSupport   FilterSupport  `json:"filter_support"`
	SourceBreakdown map[string]int `json:"source_breakdown"`
	Source          string         `json:"source"`
}

// Expired reports whether the entry is past its TTL at the given instant.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
