package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"leadscout_backend/internal/events"
	"leadscout_backend/internal/exports"
	"leadscout_backend/internal/leads/domain"
	"leadscout_backend/internal/leads/ports"
	"leadscout_backend/internal/leads/repository"
	"leadscout_backend/internal/leads/scoring"
	"leadscout_backend/internal/leads/transport"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"

	"github.com/google/uuid"
)

type memRepo struct {
	mu    sync.Mutex
	leads []domain.Lead
	clock time.Time
}

func (r *memRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *memRepo) Create(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead.CreatedAt = r.tick()
	lead.UpdatedAt = lead.CreatedAt
	r.leads = append(r.leads, lead)
	return lead, nil
}

func (r *memRepo) Update(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.leads {
		if existing.ID == lead.ID && existing.OrganizationID == lead.OrganizationID {
			lead.UpdatedAt = r.tick()
			r.leads[i] = lead
			return lead, nil
		}
	}
	return domain.Lead{}, repository.ErrNotFound
}

func (r *memRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.leads {
		if existing.ID == id && existing.OrganizationID == orgID {
			r.leads = append(r.leads[:i], r.leads[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memRepo) Import(_ context.Context, leads []domain.Lead) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, leads...)
	return int64(len(leads)), nil
}

func (r *memRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.leads {
		if existing.ID == id && existing.OrganizationID == orgID {
			return existing, nil
		}
	}
	return domain.Lead{}, repository.ErrNotFound
}

func (r *memRepo) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Lead, 0, len(r.leads))
	for _, existing := range r.leads {
		if existing.OrganizationID == orgID {
			out = append(out, existing)
		}
	}
	return out, nil
}

type fixedSettings struct {
	settings ports.ScoringSettings
}

func (f fixedSettings) ScoringSettings(context.Context, uuid.UUID) (ports.ScoringSettings, error) {
	return f.settings, nil
}

type testConfig struct{}

func (testConfig) GetScoringWorkers() int        { return 2 }
func (testConfig) GetPhoneDefaultRegion() string { return "US" }

type recorder struct {
	mu     sync.Mutex
	events []events.LeadsChanged
}

func (r *recorder) Handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.(events.LeadsChanged))
	return nil
}

// influenceOnly scores a lead as InfluenceScore/10, so 80 is hot, 50 warm, 20 cold.
func influenceOnly() ports.ScoringSettings {
	return ports.ScoringSettings{
		Profile:    "influence",
		ScoreMax:   10,
		Weights:    scoring.Weights{scoring.FactorInfluence: 100},
		Thresholds: scoring.Thresholds{ColdUpper: 3, WarmUpper: 6, HotLower: 7},
	}
}

func newTestService(settings ports.ScoringSettings) (*Service, *memRepo, *events.InMemoryBus, *recorder) {
	repo := &memRepo{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	bus := events.NewInMemoryBus(logger.Discard())
	rec := &recorder{}
	bus.Subscribe(events.LeadsChanged{}.EventName(), rec)
	exporter := exports.New(nil, nil, logger.Discard())
	return New(repo, fixedSettings{settings: settings}, exporter, bus, testConfig{}, logger.Discard()), repo, bus, rec
}

func leadRequest(name string, influence float64) transport.CreateLeadRequest {
	return transport.CreateLeadRequest{
		Name:           name,
		Company:        name + " Inc",
		Industry:       "SaaS",
		Platforms:      []string{"LinkedIn"},
		InfluenceScore: influence,
		BuyingStage:    "evaluation",
	}
}

func seed(t *testing.T, svc *Service, orgID uuid.UUID, reqs ...transport.CreateLeadRequest) []scoring.ScoredLead {
	t.Helper()
	out := make([]scoring.ScoredLead, 0, len(reqs))
	for _, req := range reqs {
		scored, err := svc.Create(context.Background(), orgID, req)
		if err != nil {
			t.Fatalf("create %s: %v", req.Name, err)
		}
		out = append(out, scored)
	}
	return out
}

func TestCreateNormalizesAndPublishes(t *testing.T) {
	svc, _, bus, rec := newTestService(influenceOnly())
	orgID := uuid.New()

	req := leadRequest("Ada", 80)
	req.Email = "  Ada@Example.COM "
	req.Phone = "+1 650-253-0000"
	req.Triggers = []string{"urgency", " Urgency ", "scarcity"}

	scored, err := svc.Create(context.Background(), orgID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lead := scored.Lead()
	if lead.Email != "ada@example.com" || lead.Phone != "+16502530000" {
		t.Fatalf("contact not normalized: %q %q", lead.Email, lead.Phone)
	}
	if lead.Status != domain.StatusNew || lead.Platforms[0] != domain.PlatformLinkedIn {
		t.Fatalf("defaults not applied: %+v", lead)
	}
	if len(lead.Triggers) != 2 {
		t.Fatalf("triggers = %v", lead.Triggers)
	}
	if scored.Score() != 8 || scored.Temperature() != domain.TemperatureHot {
		t.Fatalf("score = %v %s, want 8 hot", scored.Score(), scored.Temperature())
	}

	bus.Wait()
	if len(rec.events) != 1 || rec.events[0].Change != events.LeadChangeCreated || rec.events[0].OrganizationID != orgID {
		t.Fatalf("events = %+v", rec.events)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, repo, _, _ := newTestService(influenceOnly())

	req := leadRequest("Bob", 50)
	req.Phone = "12"
	req.Platforms = []string{"linkedin", "myspace"}

	_, err := svc.Create(context.Background(), uuid.New(), req)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, _ := appErr.Details.([]apperr.FieldError)
	if len(fields) != 2 || fields[0].Field != "phone" || fields[1].Field != "platforms" {
		t.Fatalf("field errors = %+v", fields)
	}
	if len(repo.leads) != 0 {
		t.Fatalf("invalid lead must not be stored")
	}
}

func TestListFiltersSortsAndPages(t *testing.T) {
	svc, _, _, _ := newTestService(influenceOnly())
	orgID := uuid.New()
	seed(t, svc, orgID,
		leadRequest("Cold Carl", 20),
		leadRequest("Hot Hana", 90),
		leadRequest("Warm Wes", 50),
		leadRequest("Hot Hugo", 75),
	)
	seed(t, svc, uuid.New(), leadRequest("Other Org", 99))

	got, err := svc.List(context.Background(), orgID, transport.ListLeadsRequest{Temperature: "hot", SortBy: "score"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total != 2 || got.Items[0].Lead().Name != "Hot Hugo" || got.Items[1].Lead().Name != "Hot Hana" {
		t.Fatalf("unexpected hot leads: %+v", got.PageResult)
	}
	if !got.Scoring.WeightsValid || got.Scoring.Profile != "influence" {
		t.Fatalf("diagnostics = %+v", got.Scoring)
	}

	got, err = svc.List(context.Background(), orgID, transport.ListLeadsRequest{Page: 2, PageSize: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Default order is newest first, so the oldest lead lands alone on page two.
	if got.Total != 4 || got.TotalPages != 2 || len(got.Items) != 1 || got.Items[0].Lead().Name != "Cold Carl" {
		t.Fatalf("unexpected page: %+v", got.PageResult)
	}

	got, err = svc.List(context.Background(), orgID, transport.ListLeadsRequest{Search: "hana inc", Temperature: "all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total != 1 || got.Items[0].Lead().Name != "Hot Hana" {
		t.Fatalf("search mismatch: %+v", got.PageResult)
	}
}

func TestListReportsWeightMismatchButStillScores(t *testing.T) {
	settings := influenceOnly()
	settings.Weights = scoring.Weights{scoring.FactorInfluence: 90}
	svc, _, _, _ := newTestService(settings)
	orgID := uuid.New()
	seed(t, svc, orgID, leadRequest("Ada", 80))

	got, err := svc.List(context.Background(), orgID, transport.ListLeadsRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Scoring.WeightsValid || got.Scoring.WeightSum != 90 || got.Scoring.Warning == "" {
		t.Fatalf("expected weight warning, got %+v", got.Scoring)
	}
	if got.Items[0].Score() != 7.2 || got.Items[0].Temperature() != domain.TemperatureHot {
		t.Fatalf("score = %v %s, want 7.2 hot", got.Items[0].Score(), got.Items[0].Temperature())
	}
}

func TestOverlappingThresholdsAreRejected(t *testing.T) {
	settings := influenceOnly()
	settings.Thresholds = scoring.Thresholds{ColdUpper: 6, WarmUpper: 5, HotLower: 7}
	svc, repo, _, _ := newTestService(settings)
	orgID := uuid.New()
	repo.leads = append(repo.leads, domain.Lead{ID: uuid.New(), OrganizationID: orgID, Name: "Ada", BuyingStage: domain.StageAwareness})

	_, _, err := svc.ScoreOrganization(context.Background(), orgID)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _, bus, rec := newTestService(influenceOnly())
	orgID := uuid.New()
	created := seed(t, svc, orgID, leadRequest("Ada", 20))[0]
	age := 41

	influence := 95.0
	status := "qualified"
	updated, err := svc.Update(context.Background(), orgID, created.Lead().ID, transport.UpdateLeadRequest{
		InfluenceScore: &influence,
		Status:         &status,
		Age:            &age,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Temperature() != domain.TemperatureHot || updated.Lead().Status != domain.StatusQualified || *updated.Lead().Age != 41 {
		t.Fatalf("update not applied: %+v", updated.Lead())
	}
	if updated.Lead().Name != "Ada" {
		t.Fatalf("absent fields must be kept")
	}

	if _, err := svc.Update(context.Background(), uuid.New(), created.Lead().ID, transport.UpdateLeadRequest{Status: &status}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for another organization, got %v", err)
	}

	if err := svc.Delete(context.Background(), orgID, created.Lead().ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), orgID, created.Lead().ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	bus.Wait()
	changes := make([]events.LeadChange, 0, len(rec.events))
	for _, e := range rec.events {
		changes = append(changes, e.Change)
	}
	want := []events.LeadChange{events.LeadChangeCreated, events.LeadChangeUpdated, events.LeadChangeDeleted}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for _, c := range want {
		found := false
		for _, got := range changes {
			found = found || got == c
		}
		if !found {
			t.Fatalf("missing %s event in %v", c, changes)
		}
	}
}

func TestImportIsAllOrNothing(t *testing.T) {
	svc, repo, _, _ := newTestService(influenceOnly())
	orgID := uuid.New()

	bad := leadRequest("Bad", 10)
	bad.BuyingStage = "bargaining"
	_, err := svc.Import(context.Background(), orgID, transport.ImportLeadsRequest{Leads: []transport.CreateLeadRequest{leadRequest("Ok", 10), bad}})

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, _ := appErr.Details.([]apperr.FieldError)
	if len(fields) != 1 || fields[0].Field != "leads[1].buyingStage" {
		t.Fatalf("field errors = %+v", fields)
	}
	if len(repo.leads) != 0 {
		t.Fatalf("nothing must be stored when any lead is invalid")
	}

	got, err := svc.Import(context.Background(), orgID, transport.ImportLeadsRequest{Leads: []transport.CreateLeadRequest{leadRequest("A", 10), leadRequest("B", 20)}})
	if err != nil || got.Imported != 2 {
		t.Fatalf("Import() = %+v, %v", got, err)
	}
}

func TestPreviewWithTrialWeights(t *testing.T) {
	svc, repo, _, _ := newTestService(influenceOnly())
	orgID := uuid.New()

	req := leadRequest("Trial", 60)
	req.BuyingStage = "purchase"
	got, err := svc.Preview(context.Background(), orgID, transport.ScorePreviewRequest{
		Lead:    req,
		Weights: map[string]float64{"influence": 50, "buying_stage": 40},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (0.6*50 + 1*40)/100*10 = 7
	if got.Score != 7 || got.Temperature != "hot" || len(got.Factors) != 2 {
		t.Fatalf("preview = %+v", got)
	}
	if got.Scoring.WeightsValid || got.Scoring.WeightSum != 90 {
		t.Fatalf("expected trial weight warning, got %+v", got.Scoring)
	}
	if len(repo.leads) != 0 {
		t.Fatalf("preview must not store the lead")
	}

	_, err = svc.Preview(context.Background(), orgID, transport.ScorePreviewRequest{Lead: req, Weights: map[string]float64{"sentiment": 100}})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected unknown factor to be rejected, got %v", err)
	}
}

func TestExportAppliesFilters(t *testing.T) {
	svc, _, _, _ := newTestService(influenceOnly())
	orgID := uuid.New()
	seed(t, svc, orgID, leadRequest("Cold Carl", 20), leadRequest("Hot Hana", 90))

	artifact, err := svc.Export(context.Background(), orgID, transport.ExportLeadsRequest{
		ListLeadsRequest: transport.ListLeadsRequest{Temperature: "hot"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.Rows != 1 || artifact.ContentType == "" || !strings.HasSuffix(artifact.FileName, ".csv") {
		t.Fatalf("artifact = %+v", artifact)
	}
	if !strings.Contains(string(artifact.Data), "Hot Hana,") || strings.Contains(string(artifact.Data), "Cold Carl") {
		t.Fatalf("unexpected csv:\n%s", artifact.Data)
	}

	if _, err := svc.Export(context.Background(), orgID, transport.ExportLeadsRequest{Format: "xlsx"}); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected xlsx to be rejected, got %v", err)
	}
}
