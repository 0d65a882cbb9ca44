package scheduler

import (
	"context"
	"fmt"

	"leadscout_backend/platform/config"
	"leadscout_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const defaultRebuildCron = "@every 1h"

// Periodic enqueues the segment sweep on a cron schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	spec := cfg.GetSegmentRebuildCron()
	if spec == "" {
		spec = defaultRebuildCron
	}

	scheduler := asynq.NewScheduler(opt, nil)
	if _, err := scheduler.Register(spec, NewSegmentsRebuildAllTask(), asynq.Queue(queueName(cfg))); err != nil {
		return nil, fmt.Errorf("register segment sweep %q: %w", spec, err)
	}
	log.Info("segment sweep scheduled", "cron", spec)

	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run blocks until ctx is done.
func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}
	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler failed to start", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
