package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leadscout_backend/internal/events"
	"leadscout_backend/internal/leads/scoring"
	"leadscout_backend/internal/settings/repository"
	"leadscout_backend/internal/settings/transport"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/cache"
	"leadscout_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type memRepo struct {
	mu      sync.Mutex
	byOrg   map[uuid.UUID]repository.Settings
	getHits int
}

func newMemRepo() *memRepo {
	return &memRepo{byOrg: make(map[uuid.UUID]repository.Settings)}
}

func (r *memRepo) Get(_ context.Context, orgID uuid.UUID) (repository.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getHits++
	s, ok := r.byOrg[orgID]
	if !ok {
		return repository.Settings{}, repository.ErrNotFound
	}
	return s, nil
}

func (r *memRepo) Upsert(_ context.Context, s repository.Settings) (repository.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.UpdatedAt = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	r.byOrg[s.OrganizationID] = s
	return s, nil
}

type recorder struct {
	mu     sync.Mutex
	events []events.ScoringSettingsChanged
}

func (r *recorder) Handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.(events.ScoringSettingsChanged))
	return nil
}

func newTestService(t *testing.T, settingsCache *cache.JSONCache) (*Service, *memRepo, *events.InMemoryBus, *recorder) {
	t.Helper()
	repo := newMemRepo()
	bus := events.NewInMemoryBus(logger.Discard())
	rec := &recorder{}
	bus.Subscribe(events.ScoringSettingsChanged{}.EventName(), rec)
	return New(repo, settingsCache, bus, logger.Discard(), "lead_scout"), repo, bus, rec
}

func ptr(f float64) *float64 { return &f }

func TestGetFallsBackToDefaultProfile(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)

	got, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsDefault || got.Profile != "lead_scout" || got.UpdatedAt != nil {
		t.Fatalf("expected unsaved default profile, got %+v", got)
	}
	if !got.Diagnostics.WeightsValid || got.Diagnostics.WeightSum != 100 {
		t.Fatalf("default profile must be consistent, got %+v", got.Diagnostics)
	}
}

func TestUpdateWeightsSavesAndReportsMismatch(t *testing.T) {
	svc, repo, bus, rec := newTestService(t, nil)
	orgID := uuid.New()

	got, err := svc.UpdateWeights(context.Background(), orgID, transport.UpdateWeightsRequest{
		Weights: map[string]float64{"keyword_intensity": 40, "engagement_velocity": 30, "social_proof": 20},
	})
	if err != nil {
		t.Fatalf("non-strict save must succeed, got %v", err)
	}
	if got.Diagnostics.WeightsValid || got.Diagnostics.WeightSum != 90 || got.Diagnostics.Warning == "" {
		t.Fatalf("expected mismatch diagnostics, got %+v", got.Diagnostics)
	}
	if saved := repo.byOrg[orgID]; saved.Weights[scoring.FactorInfluence] != 0 || len(saved.Weights) != 3 {
		t.Fatalf("weights must be stored as given, got %v", saved.Weights)
	}

	bus.Wait()
	if len(rec.events) != 1 || rec.events[0].WeightsValid {
		t.Fatalf("expected one change event flagged invalid, got %+v", rec.events)
	}
}

func TestUpdateWeightsRejections(t *testing.T) {
	svc, repo, _, _ := newTestService(t, nil)
	orgID := uuid.New()

	tests := []struct {
		name string
		req  transport.UpdateWeightsRequest
	}{
		{name: "strict mismatch", req: transport.UpdateWeightsRequest{Weights: map[string]float64{"influence": 90}, Strict: true}},
		{name: "unknown factor", req: transport.UpdateWeightsRequest{Weights: map[string]float64{"sentiment": 100}}},
		{name: "negative weight", req: transport.UpdateWeightsRequest{Weights: map[string]float64{"influence": -10, "buying_stage": 110}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateWeights(context.Background(), orgID, tt.req)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("expected apperr")
			}
			if fields, ok := appErr.Details.([]apperr.FieldError); !ok || len(fields) == 0 {
				t.Fatalf("expected field details, got %#v", appErr.Details)
			}
		})
	}
	if len(repo.byOrg) != 0 {
		t.Fatalf("rejected updates must not be saved")
	}
}

func TestUpdateThresholds(t *testing.T) {
	svc, repo, _, _ := newTestService(t, nil)
	orgID := uuid.New()

	_, err := svc.UpdateThresholds(context.Background(), orgID, transport.UpdateThresholdsRequest{
		ColdUpper: ptr(5), WarmUpper: ptr(4), HotLower: ptr(8),
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := appErr.Details.([]apperr.FieldError)
	if fields[0].Field != "coldUpper" {
		t.Fatalf("expected coldUpper to be named, got %+v", fields)
	}

	got, err := svc.UpdateThresholds(context.Background(), orgID, transport.UpdateThresholdsRequest{
		ColdUpper: ptr(3), WarmUpper: ptr(6), HotLower: ptr(6),
	})
	if err != nil {
		t.Fatalf("abutting warm and hot must be accepted: %v", err)
	}
	if got.Thresholds.HotLower != 6 || repo.byOrg[orgID].Thresholds.WarmUpper != 6 {
		t.Fatalf("thresholds not saved: %+v", got.Thresholds)
	}

	if _, err := svc.UpdateThresholds(context.Background(), orgID, transport.UpdateThresholdsRequest{
		ColdUpper: ptr(3), WarmUpper: ptr(6), HotLower: ptr(11),
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("hotLower above the score maximum must be rejected, got %v", err)
	}
}

func TestApplyProfile(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	orgID := uuid.New()

	got, err := svc.ApplyProfile(context.Background(), orgID, transport.ApplyProfileRequest{Profile: "Discovery"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Profile != "discovery" || got.Weights[scoring.FactorBuyingStage] != 30 || got.IsDefault {
		t.Fatalf("unexpected settings: %+v", got)
	}

	if _, err := svc.ApplyProfile(context.Background(), orgID, transport.ApplyProfileRequest{Profile: "nope"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCurrentIsCachedAndInvalidatedOnSave(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc, repo, _, _ := newTestService(t, cache.NewJSONCache(client, "scoring-settings", time.Minute))
	orgID := uuid.New()
	ctx := context.Background()

	if _, err := svc.ApplyProfile(ctx, orgID, transport.ApplyProfileRequest{Profile: "lead_scout"}); err != nil {
		t.Fatalf("apply profile: %v", err)
	}

	for range 3 {
		if _, err := svc.Current(ctx, orgID); err != nil {
			t.Fatalf("current: %v", err)
		}
	}
	if repo.getHits != 1 {
		t.Fatalf("expected one repository read, got %d", repo.getHits)
	}

	if _, err := svc.UpdateThresholds(ctx, orgID, transport.UpdateThresholdsRequest{
		ColdUpper: ptr(2), WarmUpper: ptr(5), HotLower: ptr(6),
	}); err != nil {
		t.Fatalf("update thresholds: %v", err)
	}
	current, err := svc.Current(ctx, orgID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.Thresholds.HotLower != 6 {
		t.Fatalf("cache served stale settings: %+v", current.Thresholds)
	}
}
