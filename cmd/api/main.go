package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	apiConfig "financial_forecast/pkg/api/config"
	"financial_forecast/pkg/api/projection"
	"financial_forecast/pkg/core/config"
	"financial_forecast/pkg/core/store"
)

func main() {
	// Load environment variables
	if err := config.LoadEnvFiles(); err != nil {
		config.GetLogger().WithError(err).Warn("[CONFIG] .env not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		config.GetLogger().WithError(err).Fatal("[CONFIG] failed to load config")
	}
	logger := config.ConfigureLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run archive: Postgres when configured, JSON files otherwise
	var repo *store.ProjectionRepo
	if cfg.Store.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.Store.DatabaseURL); err != nil {
			config.LogError(logger, "main", "main", "init database", nil, err)
			logger.Warn("[STORE] falling back to file archive")
		} else if err := store.EnsureSchema(ctx, store.GetPool()); err != nil {
			config.LogError(logger, "main", "main", "ensure schema", nil, err)
			logger.Warn("[STORE] falling back to file archive")
			store.Close()
		}
	}
	repo = store.NewProjectionRepo(store.GetPool(), cfg.Store.ArchiveDir)
	defer store.Close()
	logger.WithField("backend", repo.Backend()).Info("[STORE] run archive ready")

	// Result cache
	var rdb *redis.Client
	if cfg.Cache.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			config.LogError(logger, "main", "main", "ping redis", cfg.Cache.RedisAddr, err)
			logger.Warn("[CACHE] result cache disabled")
			_ = rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}
	cache := store.NewResultCache(rdb, cfg.Cache.TTL())

	engine := cfg.Engine.NewEngine(logger)

	mux := http.NewServeMux()

	// Config endpoints
	configHandler := apiConfig.NewHandler(cfg, cache.Enabled(), repo.Backend())
	mux.HandleFunc("/api/config", configHandler.HandleConfig)

	// Projection endpoints
	projectionHandler := projection.NewHandler(engine, repo, cache, logger)
	projectionHandler.Currency = cfg.Report.Currency
	projectionHandler.DefaultYears = cfg.Engine.DefaultYears
	projectionHandler.Register(mux)

	srv := &http.Server{
		Addr:              cfg.API.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithField("addr", srv.Addr).Info("[API] server starting")
	for _, route := range []string{
		"GET  /api/config",
		"POST /api/projection/run",
		"POST /api/projection/compare",
		"GET  /api/projection/runs",
		"POST /api/projection/export?format=csv|xlsx",
		"POST /api/projection/report",
	} {
		logger.Info("  - " + route)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("[FATAL] Server failed to start")
		os.Exit(1)
	}
	logger.Info("[API] server stopped")
}
