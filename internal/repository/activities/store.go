package activities

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/placedex/internal/domain/geo"
)

// querier is the pgx surface the store needs; *pgxpool.Pool satisfies it.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PGStore reads the activities table over pgx.
type PGStore struct {
	db querier
}

// NewStore creates a Postgres-backed activities store.
func NewStore(db querier) *PGStore {
	return &PGStore{db: db}
}

// SelectActivities scans the bounding box with the given column list. The
// traits join is a correlated subquery against the activity_traits side
// table; when that relation is absent Postgres raises 42P01 and the adapter
// drops the join.
func (s *PGStore) SelectActivities(
	ctx context.Context, b geo.Bounds, limit int,
	cols []string, joinTraits bool,
) ([]Row, error) {
	selectList := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		selectList = append(selectList, "a."+c)
	}
	if joinTraits {
		selectList = append(selectList,
			"(SELECT coalesce(array_agg(t.trait), '{}') FROM "+TraitsRelation+" t WHERE t.activity_id = a.id) AS traits")
	}

	sql := fmt.Sprintf(
		`SELECT %s FROM activities a
		 WHERE a.lat BETWEEN $1 AND $2 AND a.lng BETWEEN $3 AND $4
		 LIMIT $5`,
		strings.Join(selectList, ", "),
	)

	rows, err := s.db.Query(ctx, sql, b.SW.Lat, b.NE.Lat, b.SW.Lng, b.NE.Lng, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows, cols, joinTraits)
		if err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanRow builds the destination list to match the dynamic column set.
func scanRow(rows pgx.Rows, cols []string, withTraits bool) (Row, error) {
	var r Row
	dests := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		switch c {
		case "id":
			dests = append(dests, &r.ID)
		case "name":
			dests = append(dests, &r.Name)
		case "venue_label":
			dests = append(dests, &r.VenueLabel)
		case "place_id":
			dests = append(dests, &r.PlaceID)
		case "place_label":
			dests = append(dests, &r.PlaceLabel)
		case "lat":
			dests = append(dests, &r.Lat)
		case "lng":
			dests = append(dests, &r.Lng)
		case "activity_types":
			dests = append(dests, &r.ActivityTypes)
		case "tags":
			dests = append(dests, &r.Tags)
		case "taxonomy_categories":
			dests = append(dests, &r.TaxonomyCategories)
		case "price_levels":
			dests = append(dests, &r.PriceLevels)
		default:
			return Row{}, fmt.Errorf("unknown column %q", c)
		}
	}
	if withTraits {
		dests = append(dests, &r.Traits)
	}
	return r, rows.Scan(dests...)
}
