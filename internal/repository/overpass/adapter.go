// Package overpass is the third-party POI adapter. It queries the OSM
// Overpass API for leisure/amenity/tourism nodes around the search center,
// capped in radius and element count, and maps free-form OSM tags into the
// canonical item shape. A failure here degrades the overall result; it never
// aborts it.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placedex/internal/domain/discovery"
	"github.com/kailas-cloud/placedex/internal/domain/geo"
)

// Source identifies items produced by this adapter.
const Source = "osm-overpass"

// Defaults applied when Config fields are zero.
const (
	DefaultBaseURL         = "https://overpass-api.de/api/interpreter"
	DefaultTimeout         = 10 * time.Second
	DefaultMaxRadiusMeters = 5000
	DefaultMaxElements     = 100
)

// poiKeys are the OSM tag keys treated as activity-type sources.
var poiKeys = []string{"leisure", "amenity", "tourism"}

// extraTagKeys are OSM tag keys carried over as plain tags.
var extraTagKeys = []string{"sport", "cuisine", "craft"}

// Config holds the Overpass client settings.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRadiusMeters float64
	MaxElements     int
}

// Adapter implements the third-party POI source.
type Adapter struct {
	client      *http.Client
	baseURL     string
	maxRadius   float64
	maxElements int
	logger      *zap.Logger
}

// New creates the Overpass adapter.
func New(cfg Config, logger *zap.Logger) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRadiusMeters <= 0 {
		cfg.MaxRadiusMeters = DefaultMaxRadiusMeters
	}
	if cfg.MaxElements <= 0 {
		cfg.MaxElements = DefaultMaxElements
	}
	return &Adapter{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		maxRadius:   cfg.MaxRadiusMeters,
		maxElements: cfg.MaxElements,
		logger:      logger,
	}
}

// Name returns the adapter's source identifier.
func (a *Adapter) Name() string { return Source }

// response mirrors the Overpass JSON envelope.
type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Fetch queries the Overpass API. On any network or decode failure it
// returns an empty result with permissive support plus the error; the
// orchestrator records the degradation and keeps whatever it already has.
func (a *Adapter) Fetch(ctx context.Context, q *discovery.Query) (discovery.SourceResult, error) {
	empty := discovery.SourceResult{Support: discovery.FullSupport(), Source: Source}

	radius := q.RadiusMeters
	if radius > a.maxRadius {
		radius = a.maxRadius
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+"?data="+url.QueryEscape(a.buildQuery(q.Center, radius)), nil)
	if err != nil {
		return empty, fmt.Errorf("overpass request: %w", err)
	}
	req.Header.Set("User-Agent", "placedex/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return empty, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return empty, fmt.Errorf("overpass status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return empty, fmt.Errorf("overpass decode: %w", err)
	}

	return discovery.SourceResult{
		Items:   a.convert(body.Elements, q),
		Support: a.support(),
		Source:  Source,
	}, nil
}

// buildQuery renders the Overpass QL for named POI nodes around the center.
func (a *Adapter) buildQuery(center geo.Point, radius float64) string {
	var b strings.Builder
	b.WriteString("[out:json];(")
	for _, key := range poiKeys {
		fmt.Fprintf(&b, `node(around:%.0f,%.6f,%.6f)["%s"]["name"];`,
			radius, center.Lat, center.Lng, key)
	}
	fmt.Fprintf(&b, ");out body %d;", a.maxElements)
	return b.String()
}

// support: OSM nodes carry names and free-form tags but no traits, taxonomy
// categories, prices, or schedules, so only type/tag filtering is trustable.
func (a *Adapter) support() discovery.FilterSupport {
	return discovery.FilterSupport{
		ActivityTypes: true,
		Tags:          true,
	}
}

func (a *Adapter) convert(elements []element, q *discovery.Query) []discovery.Item {
	items := make([]discovery.Item, 0, len(elements))
	for _, e := range elements {
		name := e.Tags["name"]
		if name == "" {
			continue
		}

		var types, tags []string
		for _, key := range poiKeys {
			if v := e.Tags[key]; v != "" {
				types = append(types, v)
			}
		}
		for _, key := range extraTagKeys {
			if v := e.Tags[key]; v != "" {
				tags = append(tags, v)
			}
		}

		items = append(items, discovery.Item{
			ID:             fmt.Sprintf("osm:%s:%d", e.Type, e.ID),
			Name:           name,
			Lat:            e.Lat,
			Lng:            e.Lon,
			DistanceMeters: geo.Distance(q.Center, geo.Point{Lat: e.Lat, Lng: e.Lon}),
			ActivityTypes:  types,
			Tags:           tags,
			Source:         Source,
		})
	}
	return items
}
