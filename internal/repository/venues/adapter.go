// Package venues is the last-resort adapter: a bounding-box read of the
// simpler venue table, with the same missing-column retry discipline as the
// relational fallback.
package venues

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placedex/internal/domain/discovery"
	"github.com/kailas-cloud/placedex/internal/domain/geo"
	"github.com/kailas-cloud/placedex/internal/repository/relational"
)

// Source identifies items produced by this adapter.
const Source = "venues"

var baseColumns = []string{"id", "name", "lat", "lng"}

var optionalColumns = []string{"place_id", "tags", "verified"}

// Row is the source-specific venue row shape.
type Row struct {
	ID       string
	Name     string
	Lat      float64
	Lng      float64
	PlaceID  *string
	Tags     []string
	Verified *bool
}

// store is the consumer interface for the venue table (ISP).
type store interface {
	SelectVenues(ctx context.Context, b geo.Bounds, limit int, cols []string) ([]Row, error)
}

// Adapter implements the venue-table source.
type Adapter struct {
	store  store
	caps   *relational.Capabilities
	logger *zap.Logger
}

// New creates the venue-table adapter.
func New(s store, logger *zap.Logger) *Adapter {
	return &Adapter{store: s, caps: relational.NewCapabilities(), logger: logger}
}

// Name returns the adapter's source identifier.
func (a *Adapter) Name() string { return Source }

// ResetCapabilities clears the schema findings. Test support.
func (a *Adapter) ResetCapabilities() { a.caps.Reset() }

// Fetch reads venues inside the bounding box. Venue rows carry no activity
// metadata, so every dimension except tags is reported unsupported: the
// caller cannot treat a filtered miss as conclusive once this source
// contributes.
func (a *Adapter) Fetch(ctx context.Context, q *discovery.Query) (discovery.SourceResult, error) {
	bounds := q.ResolveBounds()

	for attempt := 0; attempt < relational.MaxAttempts; attempt++ {
		cols := a.selectColumns()

		rows, err := a.store.SelectVenues(ctx, bounds, q.Limit, cols)
		if err != nil {
			if issue, ok := relational.Classify(err); ok && issue.Column != "" {
				a.logger.Info("venue column missing, dropping from select",
					zap.String("column", issue.Column))
				a.caps.MarkColumnMissing(issue.Column)
				continue
			}
			return discovery.SourceResult{Support: discovery.FullSupport(), Source: Source},
				fmt.Errorf("select venues: %w", err)
		}

		return discovery.SourceResult{
			Items:   a.convert(rows, q),
			Support: a.support(),
			Source:  Source,
		}, nil
	}

	return discovery.SourceResult{Support: discovery.FullSupport(), Source: Source},
		fmt.Errorf("select venues: retry budget exhausted after %d attempts", relational.MaxAttempts)
}

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

func (a *Adapter) support() discovery.FilterSupport {
	return discovery.FilterSupport{
		Tags: !a.caps.ColumnMissing("tags"),
	}
}

func (a *Adapter) convert(rows []Row, q *discovery.Query) []discovery.Item {
	items := make([]discovery.Item, 0, len(rows))
	for _, r := range rows {
		it := discovery.Item{
			ID:             r.ID,
			Name:           r.Name,
			VenueLabel:     r.Name,
			Lat:            r.Lat,
			Lng:            r.Lng,
			DistanceMeters: geo.Distance(q.Center, geo.Point{Lat: r.Lat, Lng: r.Lng}),
			Tags:           r.Tags,
			Verified:       r.Verified,
			Source:         Source,
		}
		if r.PlaceID != nil {
			it.PlaceID = *r.PlaceID
		}
		items = append(items, it)
	}
	return items
}
