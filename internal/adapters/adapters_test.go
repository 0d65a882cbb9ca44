package adapters

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"testing"
	"time"

	"leadscout_backend/internal/adapters/storage"
	leaddomain "leadscout_backend/internal/leads/domain"
	"leadscout_backend/internal/leads/scoring"
	settingsrepo "leadscout_backend/internal/settings/repository"

	"github.com/google/uuid"
)

type stubSettings struct {
	settings settingsrepo.Settings
	err      error
}

func (s stubSettings) Current(context.Context, uuid.UUID) (settingsrepo.Settings, error) {
	return s.settings, s.err
}

func TestScoringSettingsAdapterCopiesWeights(t *testing.T) {
	stored := settingsrepo.Settings{
		Profile:    "lead_scout",
		ScoreMax:   10,
		Weights:    scoring.Weights{scoring.FactorInfluence: 100},
		Thresholds: scoring.Thresholds{ColdUpper: 3, WarmUpper: 6, HotLower: 7},
	}
	adapter := NewScoringSettingsAdapter(stubSettings{settings: stored})

	got, err := adapter.ScoringSettings(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Profile != "lead_scout" || got.ScoreMax != 10 || got.Thresholds != stored.Thresholds {
		t.Fatalf("unexpected settings: %+v", got)
	}

	got.Weights[scoring.FactorInfluence] = 1
	if stored.Weights[scoring.FactorInfluence] != 100 {
		t.Fatal("adapter must not share the weights map with the settings service")
	}
}

func TestScoringSettingsAdapterPropagatesErrors(t *testing.T) {
	want := errors.New("db down")
	_, err := NewScoringSettingsAdapter(stubSettings{err: want}).ScoringSettings(context.Background(), uuid.New())
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

type stubLeads []leaddomain.Lead

func (s stubLeads) Population(context.Context, uuid.UUID) ([]leaddomain.Lead, error) {
	return s, nil
}

func TestSegmentPopulationReader(t *testing.T) {
	reader := NewSegmentPopulationReader(stubLeads{{Name: "Ana"}, {Name: "Ben"}})
	leads, err := reader.Population(context.Background(), uuid.New())
	if err != nil || len(leads) != 2 {
		t.Fatalf("got %d leads, err %v", len(leads), err)
	}
}

type memStorage struct {
	bucket, key, contentType string
	body                     []byte
	ttl                      time.Duration
}

func (m *memStorage) EnsureBucket(context.Context, string) error { return nil }

func (m *memStorage) Put(_ context.Context, bucket, key, contentType string, reader io.Reader, _ int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.bucket, m.key, m.contentType, m.body = bucket, key, contentType, data
	return nil
}

func (m *memStorage) PresignDownload(_ context.Context, bucket, key string, ttl time.Duration) (storage.PresignedURL, error) {
	m.ttl = ttl
	return storage.PresignedURL{URL: "https://files.test/" + bucket + "/" + key, Key: key, ExpiresAt: time.Unix(100, 0)}, nil
}

func TestExportStoreUploadsAndPresigns(t *testing.T) {
	store := &memStorage{}
	adapter := NewExportStore(store, "exports")
	adapter.now = func() time.Time { return time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC) }

	key, err := adapter.Put(context.Background(), "org-1", "leads.csv", "text/csv", []byte("a,b\n"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasPrefix(key, "org-1/2026/03/09/") || path.Base(key) != "leads.csv" || key != store.key {
		t.Fatalf("unexpected key %q (stored %q)", key, store.key)
	}
	if store.bucket != "exports" || store.contentType != "text/csv" || string(store.body) != "a,b\n" {
		t.Fatalf("unexpected upload: %+v", store)
	}

	again, err := adapter.Put(context.Background(), "org-1", "leads.csv", "text/csv", []byte("a,b\n"))
	if err != nil || again == key {
		t.Fatalf("second export must get its own key, got %q (err %v)", again, err)
	}

	url, expires, err := adapter.DownloadURL(context.Background(), key)
	if err != nil {
		t.Fatalf("download url: %v", err)
	}
	if url != "https://files.test/exports/"+key || !expires.Equal(time.Unix(100, 0)) || store.ttl != exportLinkTTL {
		t.Fatalf("unexpected url %q expiring %v with ttl %v", url, expires, store.ttl)
	}
}
