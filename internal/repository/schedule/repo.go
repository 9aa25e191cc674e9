// Package schedule reads upcoming session rows for metadata hydration.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	domsched "github.com/kailas-cloud/placedex/internal/domain/schedule"
)

// querier is the pgx surface the repo needs; *pgxpool.Pool satisfies it.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const upcomingSQL = `SELECT activity_id, starts_at, ends_at, price_cents, max_attendees
  FROM activity_sessions
 WHERE activity_id = ANY($1)
   AND starts_at >= $2
   AND starts_at < $3
 ORDER BY starts_at`

// Repo reads the activity_sessions table.
type Repo struct {
	db querier
}

// New creates a schedule repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// UpcomingSessions returns sessions per activity id within [from, until).
func (r *Repo) UpcomingSessions(
	ctx context.Context, ids []string, from, until time.Time,
) (map[string][]domsched.Session, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, upcomingSQL, ids, from, until)
	if err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domsched.Session, len(ids))
	for rows.Next() {
		var (
			s          domsched.Session
			priceCents *int
			attendees  *int
		)
		if err := rows.Scan(&s.ActivityID, &s.StartsAt, &s.EndsAt, &priceCents, &attendees); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		if priceCents != nil {
			s.PriceCents = *priceCents
		}
		if attendees != nil {
			s.MaxAttendees = *attendees
		}
		out[s.ActivityID] = append(out[s.ActivityID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	return out, nil
}
