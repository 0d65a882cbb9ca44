package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"leadscout_backend/internal/adapters"
	"leadscout_backend/internal/events"
	"leadscout_backend/internal/exports"
	"leadscout_backend/internal/leads"
	"leadscout_backend/internal/scheduler"
	"leadscout_backend/internal/segments"
	"leadscout_backend/internal/settings"
	"leadscout_backend/platform/cache"
	"leadscout_backend/platform/config"
	"leadscout_backend/platform/db"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	redisClient, err := cache.Connect(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer func() { _ = redisClient.Close() }()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Worker-side segment wiring (no HTTP handlers required). Rebuilds run
	// inline here, so no scheduler is handed to the segments module.
	settingsModule := settings.NewModule(pool, cache.NewJSONCache(redisClient, "scoring-settings", cfg.GetCacheTTL()), eventBus, val, log, cfg.GetScoringDefaultProfile())
	leadsModule := leads.NewModule(pool, adapters.NewScoringSettingsAdapter(settingsModule.Service()), exports.New(nil, nil, log), eventBus, val, cfg, log)
	segmentsModule := segments.NewModule(
		pool,
		adapters.NewSegmentPopulationReader(leadsModule.Service()),
		cache.NewJSONCache(redisClient, "segment-members", cfg.GetCacheTTL()),
		nil,
		eventBus,
		val,
		log,
	)

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}
	go periodic.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, segmentsModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
}
