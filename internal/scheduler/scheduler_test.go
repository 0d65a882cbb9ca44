package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	segtransport "leadscout_backend/internal/segments/transport"
	"leadscout_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type stubRebuilder struct {
	mu      sync.Mutex
	orgs    []uuid.UUID
	rebuilt []uuid.UUID
	failFor uuid.UUID
}

func (s *stubRebuilder) Rebuild(_ context.Context, organizationID uuid.UUID) (segtransport.RebuildResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if organizationID == s.failFor {
		return segtransport.RebuildResponse{}, errors.New("rebuild failed")
	}
	s.rebuilt = append(s.rebuilt, organizationID)
	return segtransport.RebuildResponse{Segments: 1, Members: 2}, nil
}

func (s *stubRebuilder) OrganizationsWithSegments(context.Context) ([]uuid.UUID, error) {
	return s.orgs, nil
}

func TestRebuildTaskCarriesOrganization(t *testing.T) {
	orgID := uuid.New()
	rebuilder := &stubRebuilder{}
	w := newWorker(rebuilder, logger.Discard())

	task, err := NewSegmentsRebuildTask(SegmentsRebuildPayload{OrganizationID: orgID.String()})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := w.mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(rebuilder.rebuilt) != 1 || rebuilder.rebuilt[0] != orgID {
		t.Fatalf("rebuilt = %v", rebuilder.rebuilt)
	}
}

func TestMalformedRebuildTaskIsNotRetried(t *testing.T) {
	w := newWorker(&stubRebuilder{}, logger.Discard())

	for _, payload := range [][]byte{[]byte("{"), []byte(`{"organizationId":"nope"}`)} {
		err := w.mux.ProcessTask(context.Background(), asynq.NewTask(TaskSegmentsRebuild, payload))
		if !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("payload %s: expected SkipRetry, got %v", payload, err)
		}
	}
}

func TestSweepRebuildsEveryOrganization(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	rebuilder := &stubRebuilder{orgs: []uuid.UUID{a, b, c}}
	w := newWorker(rebuilder, logger.Discard())

	if err := w.mux.ProcessTask(context.Background(), NewSegmentsRebuildAllTask()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(rebuilder.rebuilt) != 3 {
		t.Fatalf("expected 3 rebuilds, got %v", rebuilder.rebuilt)
	}

	rebuilder = &stubRebuilder{orgs: []uuid.UUID{a, b}, failFor: b}
	w = newWorker(rebuilder, logger.Discard())
	if err := w.mux.ProcessTask(context.Background(), NewSegmentsRebuildAllTask()); err == nil {
		t.Fatal("expected sweep to report the failed organization")
	}
}

func TestRebuildTaskIDIsPerOrganization(t *testing.T) {
	a, b := uuid.NewString(), uuid.NewString()
	if segmentsRebuildTaskID(a) == segmentsRebuildTaskID(b) {
		t.Fatal("different organizations must not share a task id")
	}
	if segmentsRebuildTaskID(a) != segmentsRebuildTaskID(a) {
		t.Fatal("task id must be stable")
	}
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	if err := c.ScheduleRebuild(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@cache.internal:6380/2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.Password != "secret" || opt.DB != 2 || opt.TLSConfig != nil {
		t.Fatalf("unexpected options: %+v", opt)
	}

	opt, err = redisClientOpt("rediss://cache.internal:6380", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config")
	}

	if _, err := redisClientOpt("://bad", false); err == nil {
		t.Fatal("expected parse error")
	}
}
