// Package discovery defines the core types of the discovery engine: queries,
// items, filter support, facets, and results.
package discovery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/placedex/internal/domain/discovery/filter"
	"github.com/kailas-cloud/placedex/internal/domain/geo"
)

// Kind distinguishes the two discovery entry points.
type Kind string

// Discovery kinds.
const (
	KindActivities Kind = "activities"
	KindVenues     Kind = "venues"
)

// Default query limits, used when a Limits field is zero.
const (
	DefaultMinRadiusMeters = 100
	DefaultMaxRadiusMeters = 50_000
	DefaultLimit           = 20
	DefaultMaxLimit        = 50
)

// Limits holds the clamp bounds applied to incoming queries.
type Limits struct {
	MinRadiusMeters float64
	MaxRadiusMeters float64
	MaxLimit        int
}

func (l Limits) withDefaults() Limits {
	if l.MinRadiusMeters <= 0 {
		l.MinRadiusMeters = DefaultMinRadiusMeters
	}
	if l.MaxRadiusMeters <= 0 {
		l.MaxRadiusMeters = DefaultMaxRadiusMeters
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = DefaultMaxLimit
	}
	return l
}

// Query is a validated, normalized discovery request.
// Radius and limit are clamped on construction; filters are normalized.
type Query struct {
	Center       geo.Point
	RadiusMeters float64
	Bounds       *geo.Bounds
	Limit        int
	Filters      filter.Set
}

// NewQuery validates and normalizes a raw discovery request.
// Malformed radius/limit values are clamped to safe defaults; non-finite or
// out-of-range coordinates are the only rejection.
func NewQuery(
	center geo.Point, radiusMeters float64,
	bounds *geo.Bounds, limit int,
	filters filter.Set, limits Limits,
) (Query, error) {
	if !geo.Valid(center) {
		return Query{}, fmt.Errorf("invalid center coordinates (%v, %v)", center.Lat, center.Lng)
	}
	if bounds != nil && (!geo.Valid(bounds.SW) || !geo.Valid(bounds.NE)) {
		return Query{}, fmt.Errorf("invalid bounds coordinates")
	}

	limits = limits.withDefaults()
	if radiusMeters < limits.MinRadiusMeters {
		radiusMeters = limits.MinRadiusMeters
	}
	if radiusMeters > limits.MaxRadiusMeters {
		radiusMeters = limits.MaxRadiusMeters
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > limits.MaxLimit {
		limit = limits.MaxLimit
	}

	return Query{
		Center:       center,
		RadiusMeters: radiusMeters,
		Bounds:       bounds,
		Limit:        limit,
		Filters:      filter.Normalize(filters),
	}, nil
}

// ResolveBounds returns the authoritative search area: the explicit bounds if
// the request carried one, otherwise a box derived from center and radius.
func (q Query) ResolveBounds() geo.Bounds {
	if q.Bounds != nil {
		return *q.Bounds
	}
	return geo.BoundsFromRadius(q.Center, q.RadiusMeters)
}

// CacheKey derives the deterministic cache key for this query. Equal semantic
// queries produce equal keys; any difference in kind, rounded center, radius,
// limit, or normalized filters produces a different key.
func (q Query) CacheKey(kind Kind) string {
	var b strings.Builder
	b.WriteString(string(kind))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(geo.Round(q.Center.Lat, 6), 'f', 6, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(geo.Round(q.Center.Lng, 6), 'f', 6, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(geo.Round(q.RadiusMeters, 0), 'f', 0, 64))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(q.Limit))
	b.WriteByte('|')
	b.WriteString(q.Filters.Serialize())
	return b.String()
}

// TileKey returns the cache partition key for the query center.
func (q Query) TileKey() string {
	return geo.TileKey(q.Center)
}
