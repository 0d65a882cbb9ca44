package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadscout_backend/internal/adapters"
	"leadscout_backend/internal/adapters/storage"
	"leadscout_backend/internal/content"
	"leadscout_backend/internal/events"
	"leadscout_backend/internal/exports"
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/internal/http/router"
	"leadscout_backend/internal/leads"
	"leadscout_backend/internal/scheduler"
	"leadscout_backend/internal/search"
	"leadscout_backend/internal/segments"
	segmentports "leadscout_backend/internal/segments/ports"
	"leadscout_backend/internal/settings"
	"leadscout_backend/migrations"
	"leadscout_backend/platform/cache"
	"leadscout_backend/platform/config"
	"leadscout_backend/platform/db"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := db.WithRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	redisClient := connectRedis(ctx, cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	exporter := exports.New(initPDFConverter(cfg, log), initExportStore(ctx, cfg, log), log)

	rebuildScheduler, closeScheduler := initRebuildScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	settingsCache := cache.NewJSONCache(redisClient, "scoring-settings", cfg.GetCacheTTL())
	settingsModule := settings.NewModule(pool, settingsCache, eventBus, val, log, cfg.GetScoringDefaultProfile())

	// Anti-Corruption Layer: leads only see their own ScoringSettingsProvider port
	scoringSettings := adapters.NewScoringSettingsAdapter(settingsModule.Service())
	leadsModule := leads.NewModule(pool, scoringSettings, exporter, eventBus, val, cfg, log)

	population := adapters.NewSegmentPopulationReader(leadsModule.Service())
	membersCache := cache.NewJSONCache(redisClient, "segment-members", cfg.GetCacheTTL())
	segmentsModule := segments.NewModule(pool, population, membersCache, rebuildScheduler, eventBus, val, log)
	segmentsModule.RegisterHandlers(eventBus)

	contentModule := content.NewModule(pool, exporter, val, log)
	searchModule := search.NewModule(pool, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			settingsModule,
			leadsModule,
			segmentsModule,
			contentModule,
			searchModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; caching disabled")
		return nil
	}
	client, err := cache.Connect(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable; caching disabled", "error", err)
		return nil
	}
	log.Info("redis cache connected")
	return client
}

func initPDFConverter(cfg config.GotenbergConfig, log *logger.Logger) exports.PDFConverter {
	if !cfg.IsGotenbergEnabled() {
		log.Warn("GOTENBERG_URL not configured; pdf exports disabled")
		return nil
	}
	log.Info("gotenberg PDF generator initialized", "url", cfg.GetGotenbergURL())
	return exports.NewGotenbergClient(cfg.GetGotenbergURL(), cfg.GetGotenbergUsername(), cfg.GetGotenbergPassword())
}

func initExportStore(ctx context.Context, cfg *config.Config, log *logger.Logger) exports.Store {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; export archiving disabled")
		return nil
	}

	objects, err := storage.New(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketExports()
	if err := db.WithRetry(ctx, log, "ensure exports bucket", 5, 2*time.Second, func() error {
		return objects.EnsureBucket(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "exportsBucket", bucket)

	return adapters.NewExportStore(objects, bucket)
}

func initRebuildScheduler(cfg config.SchedulerConfig, log *logger.Logger) (segmentports.RebuildScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; segment rebuilds run inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize segment rebuild scheduler", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}
