package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/feedex/internal/config"
	"github.com/kailas-cloud/feedex/internal/database"
	dbRedis "github.com/kailas-cloud/feedex/internal/db/redis"
	logpkg "github.com/kailas-cloud/feedex/internal/logger"
	"github.com/kailas-cloud/feedex/internal/metrics"
	catalogrepo "github.com/kailas-cloud/feedex/internal/repository/catalog"
	elementrepo "github.com/kailas-cloud/feedex/internal/repository/element"
	feeditemrepo "github.com/kailas-cloud/feedex/internal/repository/feeditem"
	"github.com/kailas-cloud/feedex/internal/repository/imagestore"
	"github.com/kailas-cloud/feedex/internal/repository/index"
	"github.com/kailas-cloud/feedex/internal/repository/records"
	chiTransport "github.com/kailas-cloud/feedex/internal/transport/chi"
	builderuc "github.com/kailas-cloud/feedex/internal/usecase/builder"
	cataloguc "github.com/kailas-cloud/feedex/internal/usecase/catalog"
	elementuc "github.com/kailas-cloud/feedex/internal/usecase/element"
	feeduc "github.com/kailas-cloud/feedex/internal/usecase/feed"
	healthuc "github.com/kailas-cloud/feedex/internal/usecase/health"
	reindexuc "github.com/kailas-cloud/feedex/internal/usecase/reindex"
	"github.com/kailas-cloud/feedex/internal/version"
	imageworker "github.com/kailas-cloud/feedex/internal/worker/image"
	reindexworker "github.com/kailas-cloud/feedex/internal/worker/reindex"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting feedex API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("records_dialect", cfg.Records.Dialect),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	dialect, err := database.ParseDialect(cfg.Records.Dialect)
	if err != nil {
		logger.Fatal("Invalid records dialect", zap.Error(err))
	}
	if cfg.Records.Migrate {
		if err := database.RunMigrations(dialect, cfg.Records.DSN); err != nil {
			logger.Fatal("Failed to migrate record store", zap.Error(err))
		}
	}
	sqlDB, err := database.Open(ctx, dialect, cfg.Records.DSN)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()

	metrics.RegisterDomainMetrics()

	// Repositories
	recordRepo := records.New(sqlDB, dialect)
	syncer := index.NewSyncer(store)
	if err := syncer.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create search indexes", zap.Error(err))
	}
	itemRepo := feeditemrepo.New(store)
	elemRepo := elementrepo.New(store)
	appRepo := catalogrepo.New(store)
	images := imagestore.New(store)

	// Use case services
	feedSvc := feeduc.New(itemRepo, elemRepo, appRepo).
		WithObserver(metrics.FeedObserver{}).
		WithWindow(cfg.Feed.Window)
	elementSvc := elementuc.New(recordRepo, syncer, elemRepo, appRepo)
	if cfg.Images.Enabled {
		elementSvc.WithImageQueue(images)
	}
	builderSvc := builderuc.New(recordRepo, syncer)
	catalogSvc := cataloguc.New(appRepo)
	reindexSvc := reindexuc.New(recordRepo, syncer)
	healthSvc := healthuc.New(store, recordRepo)

	// Background workers
	var workers sync.WaitGroup
	if cfg.Images.Enabled {
		worker := imageworker.New(images, recordRepo, syncer,
			imageworker.NewSafeClient(cfg.Images.FetchTimeoutDuration()),
			imageworker.Config{
				MaxBytes:      cfg.Images.MaxBytes,
				MaxDimensions: cfg.Images.MaxDimensions,
				PollTimeout:   cfg.Images.PollTimeoutDuration(),
			}, logger)
		workers.Add(1)
		go func() {
			defer workers.Done()
			worker.Run(ctx)
		}()
	}

	var scheduler *reindexworker.Scheduler
	if cfg.Reindex.Enabled {
		scheduler, err = reindexworker.New(reindexSvc, cfg.Reindex.Schedule, logger)
		if err != nil {
			logger.Fatal("Invalid reindex schedule", zap.Error(err))
		}
		if cfg.Reindex.OnStart {
			_ = scheduler.RunOnce(ctx)
		}
		if err := scheduler.Start(ctx); err != nil {
			logger.Fatal("Failed to start reindex schedule", zap.Error(err))
		}
	}

	// HTTP
	server := chiTransport.NewServer(feedSvc, elementSvc, builderSvc, catalogSvc, images, healthSvc, logger).
		WithPagination(cfg.Feed.PageSize, cfg.Feed.MaxPageSize)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	if cfg.RateLimit.RPS > 0 {
		limiter := chiTransport.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger)
		defer limiter.Stop()
		r.Use(limiter.Middleware())
	}
	server.Routes(r, chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))

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

	stop()
	if scheduler != nil {
		scheduler.Stop()
	}
	workers.Wait()

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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
// Handlers attach attributes to the line through logger.AddFields.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithEvent(logpkg.ContextWithLogger(r.Context(), reqLogger))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			// Canonical log line, one per request
			fields := append([]zap.Field{
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}, logpkg.EventFields(ctx)...)
			reqLogger.Info("http_request", fields...)
		})
	}
}
