// Package chi implements the HTTP transport: query parsing, routing, and
// JSON rendering for the discovery API.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/placedex/internal/domain/discovery"
	"github.com/kailas-cloud/placedex/internal/domain/discovery/filter"
	"github.com/kailas-cloud/placedex/internal/domain/geo"
	discoveruc "github.com/kailas-cloud/placedex/internal/usecase/discover"
)

// HealthChecker is one named dependency probe for the health endpoint.
type HealthChecker struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server handles the discovery API routes.
type Server struct {
	discover *discoveruc.Service
	limits   discovery.Limits
	checkers []HealthChecker
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	discover *discoveruc.Service,
	limits discovery.Limits,
	checkers []HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		discover: discover,
		limits:   limits,
		checkers: checkers,
		logger:   logger,
	}
}

// Routes mounts all handlers on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/v1/discover/activities", s.DiscoverActivities)
	r.Get("/v1/discover/venues", s.DiscoverVenues)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// errorResponse is the uniform error payload.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// venuesResponse wraps venue discovery output.
type venuesResponse struct {
	Center        geo.Point              `json:"center"`
	RadiusMeters  float64                `json:"radius_meters"`
	Count         int                    `json:"count"`
	Venues        []discovery.Venue      `json:"venues"`
	Cache         discovery.CacheInfo    `json:"cache"`
	Degraded      bool                   `json:"degraded,omitempty"`
	FallbackError string                 `json:"fallback_error,omitempty"`
	Debug         *discoveruc.VenueDebug `json:"debug,omitempty"`
}

// DiscoverActivities handles GET /v1/discover/activities.
func (s *Server) DiscoverActivities(w http.ResponseWriter, r *http.Request) {
	q, err := s.queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	opts := discoveruc.Options{
		BypassCache: boolParam(r, "bypass_cache"),
	}

	result := s.discover.NearbyActivities(r.Context(), q, opts)
	writeJSON(w, http.StatusOK, result)
}

// DiscoverVenues handles GET /v1/discover/venues.
func (s *Server) DiscoverVenues(w http.ResponseWriter, r *http.Request) {
	q, err := s.queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	opts := discoveruc.VenueOptions{
		BypassCache:       boolParam(r, "bypass_cache"),
		IncludeUnverified: boolParam(r, "include_unverified"),
		Debug:             boolParam(r, "debug"),
	}
	activityName := r.URL.Query().Get("activity")

	result, venues, debug := s.discover.NearbyVenues(r.Context(), q, activityName, opts)

	writeJSON(w, http.StatusOK, venuesResponse{
		Center:        result.Center,
		RadiusMeters:  result.RadiusMeters,
		Count:         len(venues),
		Venues:        venues,
		Cache:         result.Cache,
		Degraded:      result.Degraded,
		FallbackError: result.FallbackError,
		Debug:         debug,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.checkers))
	healthy := true
	for _, c := range s.checkers {
		if err := c.Check(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.String("check", c.Name), zap.Error(err))
			checks[c.Name] = "unhealthy"
			healthy = false
			continue
		}
		checks[c.Name] = "healthy"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// queryFromRequest parses and validates the shared discovery query params.
func (s *Server) queryFromRequest(r *http.Request) (discovery.Query, error) {
	vals := r.URL.Query()

	lat, err := floatParam(vals.Get("lat"))
	if err != nil {
		return discovery.Query{}, errBadParam("lat", err)
	}
	lng, err := floatParam(vals.Get("lng"))
	if err != nil {
		return discovery.Query{}, errBadParam("lng", err)
	}

	radius := 0.0
	if raw := vals.Get("radius_m"); raw != "" {
		// A malformed radius is clamped to the minimum, not rejected.
		radius, _ = strconv.ParseFloat(raw, 64)
	}

	limit := 0
	if raw := vals.Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	bounds, err := boundsFromParams(vals.Get("sw_lat"), vals.Get("sw_lng"), vals.Get("ne_lat"), vals.Get("ne_lng"))
	if err != nil {
		return discovery.Query{}, err
	}

	filters := filter.Set{
		ActivityTypes:      csvParam(vals.Get("types")),
		Tags:               csvParam(vals.Get("tags")),
		Traits:             csvParam(vals.Get("traits")),
		TaxonomyCategories: csvParam(vals.Get("categories")),
		PriceLevels:        intCSVParam(vals.Get("price_levels")),
		Capacity:           filter.CapacityKey(vals.Get("capacity")),
		Window:             filter.TimeWindow(vals.Get("window")),
	}

	return discovery.NewQuery(geo.Point{Lat: lat, Lng: lng}, radius, bounds, limit, filters, s.limits)
}

func boundsFromParams(swLat, swLng, neLat, neLng string) (*geo.Bounds, error) {
	if swLat == "" && swLng == "" && neLat == "" && neLng == "" {
		return nil, nil
	}
	parse := func(name, raw string) (float64, error) {
		v, err := floatParam(raw)
		if err != nil {
			return 0, errBadParam(name, err)
		}
		return v, nil
	}
	var b geo.Bounds
	var err error
	if b.SW.Lat, err = parse("sw_lat", swLat); err != nil {
		return nil, err
	}
	if b.SW.Lng, err = parse("sw_lng", swLng); err != nil {
		return nil, err
	}
	if b.NE.Lat, err = parse("ne_lat", neLat); err != nil {
		return nil, err
	}
	if b.NE.Lng, err = parse("ne_lng", neLng); err != nil {
		return nil, err
	}
	return &b, nil
}

type paramError struct {
	name string
	err  error
}

func (e *paramError) Error() string {
	return "invalid " + e.name + " parameter: " + e.err.Error()
}

func errBadParam(name string, err error) error {
	return &paramError{name: name, err: err}
}

func floatParam(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func csvParam(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func intCSVParam(raw string) []int {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
