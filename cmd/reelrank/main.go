package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reelrank/internal/config"
	"github.com/kailas-cloud/reelrank/internal/dataset"
	"github.com/kailas-cloud/reelrank/internal/db"
	dbRedis "github.com/kailas-cloud/reelrank/internal/db/redis"
	logpkg "github.com/kailas-cloud/reelrank/internal/logger"
	"github.com/kailas-cloud/reelrank/internal/metrics"
	"github.com/kailas-cloud/reelrank/internal/repository/metacache"
	chiTransport "github.com/kailas-cloud/reelrank/internal/transport/chi"
	"github.com/kailas-cloud/reelrank/internal/transport/tmdb"
	enrichuc "github.com/kailas-cloud/reelrank/internal/usecase/enrich"
	healthuc "github.com/kailas-cloud/reelrank/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/reelrank/internal/usecase/recommend"
	"github.com/kailas-cloud/reelrank/internal/version"
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

	logger.Info("Starting reelrank API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("data_dir", cfg.Data.Dir),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	blobs := dataset.Blobs{
		Catalog:    cfg.Data.CatalogFile,
		Similarity: cfg.Data.SimilarityFile,
		Vectorizer: cfg.Data.VectorizerFile,
	}

	// Download any missing blobs, then load and validate. Both steps are
	// fatal: the snapshot must be complete before serving starts.
	ctx := context.Background()
	fetchTimeout := time.Duration(cfg.Data.FetchTimeoutSec) * time.Second
	if err := dataset.Fetch(ctx, cfg.Data.Dir, blobs, cfg.Data.SourceURLs, fetchTimeout, logger); err != nil {
		logger.Fatal("Failed to fetch data blobs", zap.Error(err))
	}

	snap, err := dataset.Load(cfg.Data.Dir, blobs)
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}
	logger.Info("Dataset loaded",
		zap.Int("movies", snap.Catalog.Len()),
		zap.Int("matrix_dim", snap.Similarity.N()),
	)

	// Register enrichment metrics explicitly (no init())
	metrics.RegisterEnrichmentMetrics()

	// Optional metadata cache store
	var store db.Store
	switch cfg.Cache.Driver {
	case "redis", "valkey":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to cache store")
	case "none":
		// enrichment runs uncached
	}

	// Metadata provider chain: TMDB -> cached. Enrichment is disabled
	// entirely when no API key is configured.
	var provider enrichuc.Provider
	var metadataChecker healthuc.MetadataChecker
	if cfg.TMDB.APIKey != "" {
		client := tmdb.NewClient(&tmdb.Config{
			BaseURL:         cfg.TMDB.BaseURL,
			ImageBaseURL:    cfg.TMDB.ImageBaseURL,
			APIKey:          cfg.TMDB.APIKey,
			Timeout:         time.Duration(cfg.TMDB.TimeoutSec) * time.Second,
			RequestsPerSec:  cfg.TMDB.RequestsPerSec,
			Burst:           cfg.TMDB.Burst,
			BreakerFailures: cfg.TMDB.BreakerFailures,
			BreakerReset:    time.Duration(cfg.TMDB.BreakerResetSec) * time.Second,
			Logger:          logger,
		})
		metadataChecker = client

		provider = client
		if store != nil {
			ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
			provider = metacache.New(client, store, ttl, metrics.EnrichmentCacheTotal, logger)
		}
		logger.Info("Metadata enrichment enabled", zap.String("base_url", cfg.TMDB.BaseURL))
	} else {
		logger.Warn("No TMDB API key configured, serving without enrichment")
	}

	enrichSvc := enrichuc.New(provider).
		WithTimeout(time.Duration(cfg.TMDB.TimeoutSec) * time.Second).
		WithConcurrency(cfg.Recommend.EnrichConcurrency)

	recommendSvc := recommenduc.New(snap, enrichSvc).
		WithMaxCount(cfg.Recommend.MaxCount)

	// Health service: nil interfaces stay nil (typed-nil gotcha)
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(cachePinger, metadataChecker)

	server := chiTransport.NewServer(recommendSvc, healthSvc, logger).
		WithDefaultCount(cfg.Recommend.DefaultCount)

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
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   "internal error",
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
