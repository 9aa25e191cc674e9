package discover

import (
	"context"
	"time"

	"github.com/kailas-cloud/placedex/internal/domain/discovery"
	domsched "github.com/kailas-cloud/placedex/internal/domain/schedule"
)

// SourceAdapter is one backing source, tried in registration order. An
// adapter never errors for "no data": it returns empty items. A non-nil
// error signals a transient source failure, and the accompanying result must
// carry maximally permissive support so the failure does not narrow the
// combined filter support.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context, q *discovery.Query) (discovery.SourceResult, error)
}

// ScheduleReader joins upcoming session rows for metadata hydration.
type ScheduleReader interface {
	UpcomingSessions(
		ctx context.Context, ids []string, from, until time.Time,
	) (map[string][]domsched.Session, error)
}

// TileCache persists discovery pulls per geographic tile.
type TileCache interface {
	Read(ctx context.Context, tileKey, cacheKey string) (*discovery.CacheEntry, bool)
	Write(ctx context.Context, tileKey, cacheKey string, entry discovery.CacheEntry)
	TTL() time.Duration
}
