// Package service provides the business logic for lead management. Scores
// and temperatures are never stored: every read scores the organization's
// current population under its current settings.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadscout_backend/internal/events"
	"leadscout_backend/internal/exports"
	"leadscout_backend/internal/leads/domain"
	"leadscout_backend/internal/leads/ports"
	"leadscout_backend/internal/leads/repository"
	"leadscout_backend/internal/leads/scoring"
	"leadscout_backend/internal/leads/transport"
	"leadscout_backend/internal/search"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"

	"github.com/google/uuid"
)

const errLeadNotFound = "lead not found"

// Config is the narrow configuration the leads service reads.
type Config interface {
	GetScoringWorkers() int
	GetPhoneDefaultRegion() string
}

// Service handles lead business operations.
type Service struct {
	repo        repository.Repository
	settings    ports.ScoringSettingsProvider
	exporter    *exports.Service
	bus         events.Bus
	log         *logger.Logger
	index       *search.Index[scoring.ScoredLead]
	workers     int
	phoneRegion string
	now         func() time.Time
}

// New creates a new leads service.
func New(repo repository.Repository, settings ports.ScoringSettingsProvider, exporter *exports.Service, bus events.Bus, cfg Config, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		settings:    settings,
		exporter:    exporter,
		bus:         bus,
		log:         log,
		index:       newIndex(),
		workers:     cfg.GetScoringWorkers(),
		phoneRegion: cfg.GetPhoneDefaultRegion(),
		now:         time.Now,
	}
}

// Create stores a new lead and returns it scored.
func (s *Service) Create(ctx context.Context, organizationID uuid.UUID, req transport.CreateLeadRequest) (scoring.ScoredLead, error) {
	lead, err := s.buildLead(organizationID, req, "")
	if err != nil {
		return scoring.ScoredLead{}, err
	}
	lead.ID = uuid.New()

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		return scoring.ScoredLead{}, err
	}

	s.log.Info("lead created", "id", created.ID, "organizationId", organizationID)
	s.publish(ctx, organizationID, events.LeadChangeCreated, created.ID)
	return s.evaluate(ctx, created)
}

// Update applies the present fields of req to a lead.
func (s *Service) Update(ctx context.Context, organizationID, id uuid.UUID, req transport.UpdateLeadRequest) (scoring.ScoredLead, error) {
	lead, err := s.repo.GetByID(ctx, organizationID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return scoring.ScoredLead{}, apperr.NotFound(errLeadNotFound)
	}
	if err != nil {
		return scoring.ScoredLead{}, err
	}

	if err := s.applyUpdate(&lead, req); err != nil {
		return scoring.ScoredLead{}, err
	}

	updated, err := s.repo.Update(ctx, lead)
	if errors.Is(err, repository.ErrNotFound) {
		return scoring.ScoredLead{}, apperr.NotFound(errLeadNotFound)
	}
	if err != nil {
		return scoring.ScoredLead{}, err
	}

	s.log.Info("lead updated", "id", id, "organizationId", organizationID)
	s.publish(ctx, organizationID, events.LeadChangeUpdated, id)
	return s.evaluate(ctx, updated)
}

// Delete soft-deletes a lead.
func (s *Service) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	err := s.repo.Delete(ctx, organizationID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(errLeadNotFound)
	}
	if err != nil {
		return err
	}

	s.log.Info("lead deleted", "id", id, "organizationId", organizationID)
	s.publish(ctx, organizationID, events.LeadChangeDeleted, id)
	return nil
}

// Import validates every lead first and stores none if any is invalid.
func (s *Service) Import(ctx context.Context, organizationID uuid.UUID, req transport.ImportLeadsRequest) (transport.ImportLeadsResponse, error) {
	now := s.now().UTC()
	leads := make([]domain.Lead, 0, len(req.Leads))
	ids := make([]uuid.UUID, 0, len(req.Leads))
	var fieldErrs []apperr.FieldError

	for i, item := range req.Leads {
		lead, err := s.buildLead(organizationID, item, leadPath(i))
		if err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				if details, ok := appErr.Details.([]apperr.FieldError); ok {
					fieldErrs = append(fieldErrs, details...)
					continue
				}
			}
			return transport.ImportLeadsResponse{}, err
		}
		lead.ID = uuid.New()
		lead.CreatedAt = now
		lead.UpdatedAt = now
		leads = append(leads, lead)
		ids = append(ids, lead.ID)
	}
	if len(fieldErrs) > 0 {
		return transport.ImportLeadsResponse{}, apperr.InvalidFields("invalid leads", fieldErrs)
	}

	n, err := s.repo.Import(ctx, leads)
	if err != nil {
		return transport.ImportLeadsResponse{}, err
	}

	s.log.Info("leads imported", "count", n, "organizationId", organizationID)
	s.publish(ctx, organizationID, events.LeadChangeImport, ids...)
	return transport.ImportLeadsResponse{Imported: int(n)}, nil
}

// GetByID returns one lead scored against its organization's population.
func (s *Service) GetByID(ctx context.Context, organizationID, id uuid.UUID) (scoring.ScoredLead, error) {
	lead, err := s.repo.GetByID(ctx, organizationID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return scoring.ScoredLead{}, apperr.NotFound(errLeadNotFound)
	}
	if err != nil {
		return scoring.ScoredLead{}, err
	}
	return s.evaluate(ctx, lead)
}

// List scores the organization's leads and returns the requested page.
func (s *Service) List(ctx context.Context, organizationID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	query := toQuery(req)
	if err := s.index.Validate(query); err != nil {
		return transport.LeadListResponse{}, err
	}

	scored, diag, err := s.ScoreOrganization(ctx, organizationID)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	return transport.LeadListResponse{
		PageResult: s.index.Page(scored, query),
		Scoring:    diag,
	}, nil
}

// Export renders the filtered, sorted lead list. Paging is ignored.
func (s *Service) Export(ctx context.Context, organizationID uuid.UUID, req transport.ExportLeadsRequest) (exports.Artifact, error) {
	format, err := exports.ParseFormat(req.Format)
	if err != nil {
		return exports.Artifact{}, err
	}
	query := toQuery(req.ListLeadsRequest)
	if err := s.index.Validate(query); err != nil {
		return exports.Artifact{}, err
	}

	scored, _, err := s.ScoreOrganization(ctx, organizationID)
	if err != nil {
		return exports.Artifact{}, err
	}

	table := exports.Collect("leads", s.index.Apply(scored, query), exportColumns)
	artifact, err := s.exporter.Export(ctx, exports.Request{OrganizationID: organizationID, Format: format, Store: req.Store}, table)
	if err != nil {
		return exports.Artifact{}, err
	}

	s.log.Info("leads exported", "organizationId", organizationID, "format", format, "rows", artifact.Rows, "stored", artifact.Stored())
	return artifact, nil
}

// Preview scores an unsaved lead against the organization's population,
// optionally with trial weights. Nothing is stored.
func (s *Service) Preview(ctx context.Context, organizationID uuid.UUID, req transport.ScorePreviewRequest) (transport.ScorePreviewResponse, error) {
	lead, err := s.buildLead(organizationID, req.Lead, "lead")
	if err != nil {
		return transport.ScorePreviewResponse{}, err
	}

	settings, err := s.settings.ScoringSettings(ctx, organizationID)
	if err != nil {
		return transport.ScorePreviewResponse{}, err
	}
	if len(req.Weights) > 0 {
		weights, err := scoring.WeightsFromMap(req.Weights)
		if err != nil {
			return transport.ScorePreviewResponse{}, err
		}
		settings.Weights = weights
		settings.Profile = ""
	}

	population, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return transport.ScorePreviewResponse{}, err
	}

	cfg := configFor(settings, population)
	scored, err := scoring.Evaluate(lead, cfg)
	if err != nil && !isWeightWarning(err) {
		return transport.ScorePreviewResponse{}, scoringError(err)
	}

	result := scored.Result()
	return transport.ScorePreviewResponse{
		Score:       result.Score,
		ScoreMax:    result.ScoreMax,
		Temperature: string(scored.Temperature()),
		Factors:     result.Factors,
		Version:     result.Version,
		Scoring:     diagnose(settings),
	}, nil
}

// Population returns every live lead of the organization, unscored.
func (s *Service) Population(ctx context.Context, organizationID uuid.UUID) ([]domain.Lead, error) {
	return s.repo.ListByOrganization(ctx, organizationID)
}

// ScoreOrganization scores the organization's full population on the worker
// pool. A weight configuration that does not sum to 100 is logged and
// reported in the diagnostics; scores are still returned.
func (s *Service) ScoreOrganization(ctx context.Context, organizationID uuid.UUID) ([]scoring.ScoredLead, transport.ScoringDiagnostics, error) {
	settings, err := s.settings.ScoringSettings(ctx, organizationID)
	if err != nil {
		return nil, transport.ScoringDiagnostics{}, err
	}
	population, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, transport.ScoringDiagnostics{}, err
	}

	diag := diagnose(settings)
	scored, err := scoring.ScoreAll(ctx, population, configFor(settings, population), s.workers)
	if err != nil && !isWeightWarning(err) {
		return nil, diag, scoringError(err)
	}
	if !diag.WeightsValid {
		s.log.ScoringWarning(organizationID.String(), diag.WeightSum, diag.Warning)
	}
	return scored, diag, nil
}

func (s *Service) evaluate(ctx context.Context, lead domain.Lead) (scoring.ScoredLead, error) {
	settings, err := s.settings.ScoringSettings(ctx, lead.OrganizationID)
	if err != nil {
		return scoring.ScoredLead{}, err
	}
	population, err := s.repo.ListByOrganization(ctx, lead.OrganizationID)
	if err != nil {
		return scoring.ScoredLead{}, err
	}

	scored, err := scoring.Evaluate(lead, configFor(settings, population))
	if err != nil && !isWeightWarning(err) {
		return scoring.ScoredLead{}, scoringError(err)
	}
	return scored, nil
}

func (s *Service) publish(ctx context.Context, organizationID uuid.UUID, change events.LeadChange, ids ...uuid.UUID) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.LeadsChanged{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: organizationID,
		LeadIDs:        ids,
		Change:         change,
	})
}

func configFor(settings ports.ScoringSettings, population []domain.Lead) scoring.Config {
	return scoring.NewConfig(scoring.BaselinesFrom(population), settings.ScoreMax, settings.Weights, settings.Thresholds)
}

func diagnose(settings ports.ScoringSettings) transport.ScoringDiagnostics {
	diag := transport.ScoringDiagnostics{
		Profile:      settings.Profile,
		WeightSum:    settings.Weights.Sum(),
		WeightsValid: true,
	}
	var sumErr *scoring.WeightSumError
	if err := settings.Weights.Validate(); errors.As(err, &sumErr) {
		diag.WeightsValid = false
		diag.Warning = sumErr.Error()
	}
	return diag
}

func isWeightWarning(err error) bool {
	var sumErr *scoring.WeightSumError
	return errors.As(err, &sumErr)
}

// scoringError converts configuration errors to their API form.
func scoringError(err error) error {
	var overlapErr *scoring.ThresholdOverlapError
	var weightErr *scoring.InvalidWeightError
	switch {
	case errors.As(err, &overlapErr):
		return overlapErr.AppErr()
	case errors.As(err, &weightErr):
		return weightErr.AppErr()
	default:
		return err
	}
}

func toQuery(req transport.ListLeadsRequest) search.Query {
	return search.Query{
		Search: strings.TrimSpace(req.Search),
		Filters: map[string]string{
			"status":      req.Status,
			"platform":    req.Platform,
			"temperature": req.Temperature,
			"industry":    req.Industry,
			"buyingStage": req.BuyingStage,
		},
		SortBy:    req.SortBy,
		SortOrder: search.SortOrder(req.SortOrder),
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
}
