// Package activities is the relational fallback adapter: a bounding-box scan
// over the general activities table with an optional traits join. The target
// schema evolves independently, so missing optional columns and a missing
// join table are tolerated by dropping them and retrying within a bounded
// attempt budget.
package activities

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placedex/internal/domain/discovery"
	"github.com/kailas-cloud/placedex/internal/domain/geo"
	"github.com/kailas-cloud/placedex/internal/repository/relational"
)

// Source identifies items produced by this adapter.
const Source = "activities"

// TraitsRelation is the side table joined for trait filters.
const TraitsRelation = "activity_traits"

// baseColumns are always selected; the table cannot function without them.
var baseColumns = []string{"id", "name", "lat", "lng"}

// optionalColumns may be absent from the live schema. Dropping one degrades
// the support map for the dimensions it backs.
var optionalColumns = []string{
	"venue_label", "place_id", "place_label",
	"activity_types", "tags", "taxonomy_categories", "price_levels",
}

// Row is the source-specific row shape, converted to discovery.Item at the
// adapter boundary.
type Row struct {
	ID                 string
	Name               string
	VenueLabel         *string
	PlaceID            *string
	PlaceLabel         *string
	Lat                float64
	Lng                float64
	ActivityTypes      []string
	Tags               []string
	TaxonomyCategories []string
	PriceLevels        []int32
	Traits             []string
}

// store is the consumer interface for the activities table (ISP).
type store interface {
	SelectActivities(
		ctx context.Context, b geo.Bounds, limit int,
		cols []string, joinTraits bool,
	) ([]Row, error)
}

// Adapter implements the relational fallback source.
type Adapter struct {
	store  store
	caps   *relational.Capabilities
	logger *zap.Logger
}

// New creates the relational fallback adapter.
func New(s store, logger *zap.Logger) *Adapter {
	return &Adapter{store: s, caps: relational.NewCapabilities(), logger: logger}
}

// Name returns the adapter's source identifier.
func (a *Adapter) Name() string { return Source }

// ResetCapabilities clears the schema findings. Test support.
func (a *Adapter) ResetCapabilities() { a.caps.Reset() }

// Fetch scans the bounding box for the query. Recoverable schema errors drop
// the offending column or join and retry; anything else returns an empty
// result with permissive support plus the error, so the caller records the
// degradation without narrowing filter support.
func (a *Adapter) Fetch(ctx context.Context, q *discovery.Query) (discovery.SourceResult, error) {
	bounds := q.ResolveBounds()

	for attempt := 0; attempt < relational.MaxAttempts; attempt++ {
		cols := a.selectColumns()
		joinTraits := !a.caps.RelationMissing(TraitsRelation)

		rows, err := a.store.SelectActivities(ctx, bounds, q.Limit, cols, joinTraits)
		if err != nil {
			if issue, ok := relational.Classify(err); ok {
				switch {
				case issue.Column != "":
					a.logger.Info("activities column missing, dropping from select",
						zap.String("column", issue.Column))
					a.caps.MarkColumnMissing(issue.Column)
				case issue.Relation != "":
					a.logger.Info("activities relation missing, dropping join",
						zap.String("relation", issue.Relation))
					a.caps.MarkRelationMissing(issue.Relation)
				}
				continue
			}
			return discovery.SourceResult{Support: discovery.FullSupport(), Source: Source},
				fmt.Errorf("select activities: %w", err)
		}

		return discovery.SourceResult{
			Items:   a.convert(rows, q),
			Support: a.support(),
			Source:  Source,
		}, nil
	}

	return discovery.SourceResult{Support: discovery.FullSupport(), Source: Source},
		fmt.Errorf("select activities: retry budget exhausted after %d attempts", relational.MaxAttempts)
}

// selectColumns returns the column list minus everything the schema lacks.
func (a *Adapter) selectColumns() []string {
	cols := make([]string, 0, len(baseColumns)+len(optionalColumns))
	cols = append(cols, baseColumns...)
	for _, c := range optionalColumns {
		if !a.caps.ColumnMissing(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// support reflects the degraded capability of the current column set.
func (a *Adapter) support() discovery.FilterSupport {
	s := discovery.FullSupport()
	if a.caps.ColumnMissing("activity_types") {
		s.ActivityTypes = false
	}
	if a.caps.ColumnMissing("tags") {
		s.Tags = false
	}
	// taxonomy categories are derivable from tags, so both columns must be
	// gone before the dimension is unsupported
	if a.caps.ColumnMissing("taxonomy_categories") && a.caps.ColumnMissing("tags") {
		s.TaxonomyCategories = false
	}
	if a.caps.ColumnMissing("price_levels") {
		s.PriceLevels = false
	}
	if a.caps.RelationMissing(TraitsRelation) {
		s.Traits = false
	}
	return s
}

func (a *Adapter) convert(rows []Row, q *discovery.Query) []discovery.Item {
	items := make([]discovery.Item, 0, len(rows))
	for _, r := range rows {
		it := discovery.Item{
			ID:                 r.ID,
			Name:               r.Name,
			Lat:                r.Lat,
			Lng:                r.Lng,
			DistanceMeters:     geo.Distance(q.Center, geo.Point{Lat: r.Lat, Lng: r.Lng}),
			ActivityTypes:      r.ActivityTypes,
			Tags:               r.Tags,
			Traits:             r.Traits,
			TaxonomyCategories: r.TaxonomyCategories,
			PriceLevels:        toInts(r.PriceLevels),
			Source:             Source,
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
		items = append(items, it)
	}
	return items
}

func toInts(v []int32) []int {
	if len(v) == 0 {
		return nil
	}
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out
}
