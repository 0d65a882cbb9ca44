package scheduler

import (
	"context"
	"fmt"

	segtransport "leadscout_backend/internal/segments/transport"
	"leadscout_backend/platform/config"
	"leadscout_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

const sweepParallelism = 4

// SegmentRebuilder is what the worker needs from the segments module.
type SegmentRebuilder interface {
	Rebuild(ctx context.Context, organizationID uuid.UUID) (segtransport.RebuildResponse, error)
	OrganizationsWithSegments(ctx context.Context) ([]uuid.UUID, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	segments SegmentRebuilder
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, segments SegmentRebuilder, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(segments, log)
	w.server = server
	return w, nil
}

func newWorker(segments SegmentRebuilder, log *logger.Logger) *Worker {
	w := &Worker{
		mux:      asynq.NewServeMux(),
		segments: segments,
		log:      log,
	}
	w.mux.HandleFunc(TaskSegmentsRebuild, w.handleSegmentsRebuild)
	w.mux.HandleFunc(TaskSegmentsRebuildAll, w.handleSegmentsRebuildAll)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleSegmentsRebuild(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSegmentsRebuildPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	return w.rebuild(ctx, orgID)
}

func (w *Worker) handleSegmentsRebuildAll(ctx context.Context, _ *asynq.Task) error {
	orgIDs, err := w.segments.OrganizationsWithSegments(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepParallelism)
	for _, orgID := range orgIDs {
		g.Go(func() error {
			return w.rebuild(gctx, orgID)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w.log.Info("segment sweep finished", "organizations", len(orgIDs))
	return nil
}

func (w *Worker) rebuild(ctx context.Context, orgID uuid.UUID) error {
	result, err := w.segments.Rebuild(ctx, orgID)
	if err != nil {
		w.log.Warn("segment rebuild failed", "organizationId", orgID, "error", err)
		return err
	}
	w.log.Info("segments rebuilt", "organizationId", orgID, "segments", result.Segments, "members", result.Members)
	return nil
}
