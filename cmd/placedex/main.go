package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kailas-cloud/placedex/internal/config"
	dbRedis "github.com/kailas-cloud/placedex/internal/db/redis"
	"github.com/kailas-cloud/placedex/internal/domain/discovery"
	logpkg "github.com/kailas-cloud/placedex/internal/logger"
	"github.com/kailas-cloud/placedex/internal/metrics"
	activitiesrepo "github.com/kailas-cloud/placedex/internal/repository/activities"
	overpassrepo "github.com/kailas-cloud/placedex/internal/repository/overpass"
	schedulerepo "github.com/kailas-cloud/placedex/internal/repository/schedule"
	spatialrepo "github.com/kailas-cloud/placedex/internal/repository/spatial"
	"github.com/kailas-cloud/placedex/internal/repository/tilecache"
	venuesrepo "github.com/kailas-cloud/placedex/internal/repository/venues"
	chiTransport "github.com/kailas-cloud/placedex/internal/transport/chi"
	discoveruc "github.com/kailas-cloud/placedex/internal/usecase/discover"
	"github.com/kailas-cloud/placedex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting placedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	// Tile cache store
	cacheStore, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Username: cfg.Cache.Username,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer cacheStore.Close()

	ctx := context.Background()
	if err := cacheStore.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache store not ready", zap.Error(err))
	}
	logger.Info("Connected to cache store")

	// Relational store
	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Postgres not ready", zap.Error(err))
	}
	logger.Info("Connected to postgres")

	// Register discovery metrics explicitly (no init())
	metrics.RegisterDiscoveryMetrics()

	// Source adapters, in fallback priority order.
	adapters := []discoveruc.SourceAdapter{
		spatialrepo.New(pool, logger),
		activitiesrepo.New(activitiesrepo.NewStore(pool), logger),
	}
	if !cfg.Discovery.DisableOverpass {
		adapters = append(adapters, overpassrepo.New(overpassrepo.Config{
			BaseURL:         cfg.Overpass.BaseURL,
			Timeout:         time.Duration(cfg.Overpass.TimeoutSec) * time.Second,
			MaxRadiusMeters: cfg.Overpass.MaxRadiusMeters,
			MaxElements:     cfg.Overpass.MaxElements,
		}, logger))
	}
	if !cfg.Discovery.DisableVenueTable {
		adapters = append(adapters, venuesrepo.New(venuesrepo.NewStore(pool), logger))
	}

	cache := tilecache.New(
		cacheStore,
		time.Duration(cfg.Discovery.CacheTTLSec)*time.Second,
		cfg.Discovery.TileMaxEntries,
		cfg.Discovery.CacheMaxItems,
		logger,
	)
	schedules := schedulerepo.New(pool)

	discoverSvc := discoveruc.New(adapters, schedules, cache, logger).
		WithLookahead(time.Duration(cfg.Discovery.LookaheadDays) * 24 * time.Hour)

	limits := discovery.Limits{
		MinRadiusMeters: cfg.Discovery.MinRadiusMeters,
		MaxRadiusMeters: cfg.Discovery.MaxRadiusMeters,
		MaxLimit:        cfg.Discovery.MaxLimit,
	}

	checkers := []chiTransport.HealthChecker{
		{Name: "cache", Check: cacheStore.Ping},
		{Name: "postgres", Check: pool.Ping},
	}

	server := chiTransport.NewServer(discoverSvc, limits, checkers, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
