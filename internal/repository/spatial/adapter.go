// Package spatial is the primary adapter: a nearest-neighbor SQL function
// backed by the PostGIS index, with activity-type and tag filters pushed
// down. Any procedure error is logged and degrades to an empty result with
// full filter support, so downstream adapters stay trusted.
package spatial

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/placedex/internal/domain/discovery"
)

// Source identifies items produced by this adapter.
const Source = "postgis"

const nearbySQL = `SELECT id, name, venue_label, place_id, place_label,
       lat, lng, distance_meters,
       activity_types, tags, traits, price_levels
  FROM nearby_activities($1, $2, $3, $4, $5, $6)`

// querier is the pgx surface the adapter needs; *pgxpool.Pool satisfies it.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Row is the source-specific row shape returned by the spatial function.
type Row struct {
	ID             string
	Name           string
	VenueLabel     *string
	PlaceID        *string
	PlaceLabel     *string
	Lat            float64
	Lng            float64
	DistanceMeters float64
	ActivityTypes  []string
	Tags           []string
	Traits         []string
	PriceLevels    []int32
}

// Adapter implements the primary spatial source.
type Adapter struct {
	db     querier
	logger *zap.Logger
}

// New creates the spatial index adapter.
func New(db querier, logger *zap.Logger) *Adapter {
	return &Adapter{db: db, logger: logger}
}

// Name returns the adapter's source identifier.
func (a *Adapter) Name() string { return Source }

// Fetch calls the nearest-neighbor function. The spatial table carries every
// filterable column, so support is full; on any error the adapter degrades to
// an empty result without reporting failure upward.
func (a *Adapter) Fetch(ctx context.Context, q *discovery.Query) (discovery.SourceResult, error) {
	empty := discovery.SourceResult{Support: discovery.FullSupport(), Source: Source}

	var types, tags []string
	if len(q.Filters.ActivityTypes) > 0 {
		types = q.Filters.ActivityTypes
	}
	if len(q.Filters.Tags) > 0 {
		tags = q.Filters.Tags
	}

	rows, err := a.db.Query(ctx, nearbySQL,
		q.Center.Lat, q.Center.Lng, q.RadiusMeters, q.Limit, types, tags)
	if err != nil {
		a.logger.Warn("spatial lookup failed, falling through", zap.Error(err))
		return empty, nil
	}
	defer rows.Close()

	items := make([]discovery.Item, 0, q.Limit)
	for rows.Next() {
		var r Row
		if err := rows.Scan(
			&r.ID, &r.Name, &r.VenueLabel, &r.PlaceID, &r.PlaceLabel,
			&r.Lat, &r.Lng, &r.DistanceMeters,
			&r.ActivityTypes, &r.Tags, &r.Traits, &r.PriceLevels,
		); err != nil {
			a.logger.Warn("spatial row scan failed, falling through", zap.Error(err))
			return empty, nil
		}
		items = append(items, r.toItem())
	}
	if err := rows.Err(); err != nil {
		a.logger.Warn("spatial rows failed, falling through", zap.Error(err))
		return empty, nil
	}

	return discovery.SourceResult{
		Items:   items,
		Support: discovery.FullSupport(),
		Source:  Source,
	}, nil
}

func (r Row) toItem() discovery.Item {
	it := discovery.Item{
		ID:             r.ID,
		Name:           r.Name,
		Lat:            r.Lat,
		Lng:            r.Lng,
		DistanceMeters: r.DistanceMeters,
		ActivityTypes:  r.ActivityTypes,
		Tags:           r.Tags,
		Traits:         r.Traits,
		Source:         Source,
	}
	if r.VenueLabel != nil {
		it.VenueLabel = *r.VenueLabel
	}
	if r.PlaceID != nil {
		it.PlaceID = *r.PlaceID
	}
	if r.PlaceLabel != nil {
		it.PlaceLabel = *r.PlaceLabel
	}
	if len(r.PriceLevels) > 0 {
		it.PriceLevels = make([]int, len(r.PriceLevels))
		for i, p := range r.PriceLevels {
			it.PriceLevels[i] = int(p)
		}
	}
	return it
}
