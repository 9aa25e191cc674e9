package venues

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

// PGStore reads the venue table over pgx.
type PGStore struct {
	db querier
}

// NewStore creates a Postgres-backed venue store.
func NewStore(db querier) *PGStore {
	return &PGStore{db: db}
}

// SelectVenues scans the bounding box with the given column list.
func (s *PGStore) SelectVenues(
	ctx context.Context, b geo.Bounds, limit int, cols []string,
) ([]Row, error) {
	selectList := make([]string, 0, len(cols))
	for _, c := range cols {
		selectList = append(selectList, "v."+c)
	}

	sql := fmt.Sprintf(
		`SELECT %s FROM venues v
		 WHERE v.lat BETWEEN $1 AND $2 AND v.lng BETWEEN $3 AND $4
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
		r, err := scanRow(rows, cols)
		if err != nil {
			return nil, fmt.Errorf("scan venue row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanRow(rows pgx.Rows, cols []string) (Row, error) {
	var r Row
	dests := make([]any, 0, len(cols))
	for _, c := range cols {
		switch c {
		case "id":
			dests = append(dests, &r.ID)
		case "name":
			dests = append(dests, &r.Name)
		case "lat":
			dests = append(dests, &r.Lat)
		case "lng":
			dests = append(dests, &r.Lng)
		case "place_id":
			dests = append(dests, &r.PlaceID)
		case "tags":
			dests = append(dests, &r.Tags)
		case "verified":
			dests = append(dests, &r.Verified)
		default:
			return Row{}, fmt.Errorf("unknown column %q", c)
		}
	}
	return r, rows.Scan(dests...)
}
