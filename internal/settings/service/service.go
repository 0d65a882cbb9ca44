package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadscout_backend/internal/events"
	"leadscout_backend/internal/leads/scoring"
	"leadscout_backend/internal/settings/repository"
	"leadscout_backend/internal/settings/transport"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/cache"
	"leadscout_backend/platform/logger"

	"github.com/google/uuid"
)

// Service manages per-organization scoring settings. Organizations that
// never saved settings score with the default profile.
type Service struct {
	repo           repository.Repository
	cache          *cache.JSONCache
	bus            events.Bus
	log            *logger.Logger
	defaultProfile string
}

// New creates a settings service. settingsCache may be nil.
func New(repo repository.Repository, settingsCache *cache.JSONCache, bus events.Bus, log *logger.Logger, defaultProfile string) *Service {
	return &Service{
		repo:           repo,
		cache:          settingsCache,
		bus:            bus,
		log:            log,
		defaultProfile: defaultProfile,
	}
}

// Current returns the settings scoring should use for the organization.
func (s *Service) Current(ctx context.Context, organizationID uuid.UUID) (repository.Settings, error) {
	settings, _, err := s.current(ctx, organizationID)
	return settings, err
}

func (s *Service) current(ctx context.Context, organizationID uuid.UUID) (repository.Settings, bool, error) {
	key := organizationID.String()

	var cached repository.Settings
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, false, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("scoring settings cache read failed", "organizationId", organizationID, "error", err)
	}

	settings, err := s.repo.Get(ctx, organizationID)
	if errors.Is(err, repository.ErrNotFound) {
		def, defErr := s.defaults(organizationID)
		return def, true, defErr
	}
	if err != nil {
		return repository.Settings{}, false, err
	}

	if err := s.cache.Set(ctx, key, settings); err != nil {
		s.log.Warn("scoring settings cache write failed", "organizationId", organizationID, "error", err)
	}
	return settings, false, nil
}

func (s *Service) defaults(organizationID uuid.UUID) (repository.Settings, error) {
	profile, ok := scoring.LookupProfile(s.defaultProfile)
	if !ok {
		return repository.Settings{}, apperr.Internal(fmt.Sprintf("default scoring profile %q is not defined", s.defaultProfile))
	}
	return repository.Settings{
		OrganizationID: organizationID,
		Profile:        profile.Name,
		ScoreMax:       profile.ScoreMax,
		Weights:        profile.Weights,
		Thresholds:     profile.Thresholds,
	}, nil
}

// Get returns the current settings with weight diagnostics.
func (s *Service) Get(ctx context.Context, organizationID uuid.UUID) (transport.SettingsResponse, error) {
	settings, isDefault, err := s.current(ctx, organizationID)
	if err != nil {
		return transport.SettingsResponse{}, err
	}
	return toSettingsResponse(settings, isDefault), nil
}

// UpdateWeights replaces the weights. Weights that do not sum to 100 are saved
// as given and reported in the diagnostics, unless req.Strict asks for a rejection.
func (s *Service) UpdateWeights(ctx context.Context, organizationID uuid.UUID, req transport.UpdateWeightsRequest) (transport.SettingsResponse, error) {
	weights, err := scoring.WeightsFromMap(req.Weights)
	if err != nil {
		return transport.SettingsResponse{}, err
	}

	var sumErr *scoring.WeightSumError
	var weightErr *scoring.InvalidWeightError
	switch err := weights.Validate(); {
	case errors.As(err, &weightErr):
		return transport.SettingsResponse{}, weightErr.AppErr()
	case errors.As(err, &sumErr) && req.Strict:
		return transport.SettingsResponse{}, sumErr.AppErr()
	}

	current, _, err := s.current(ctx, organizationID)
	if err != nil {
		return transport.SettingsResponse{}, err
	}
	current.Weights = weights
	current.Profile = ""

	return s.save(ctx, current)
}

// UpdateThresholds replaces the temperature thresholds. Thresholds that break
// coldUpper < warmUpper <= hotLower are rejected with the offending field.
func (s *Service) UpdateThresholds(ctx context.Context, organizationID uuid.UUID, req transport.UpdateThresholdsRequest) (transport.SettingsResponse, error) {
	thresholds := scoring.Thresholds{ColdUpper: *req.ColdUpper, WarmUpper: *req.WarmUpper, HotLower: *req.HotLower}

	var overlapErr *scoring.ThresholdOverlapError
	if err := thresholds.Validate(); errors.As(err, &overlapErr) {
		return transport.SettingsResponse{}, overlapErr.AppErr()
	}

	current, _, err := s.current(ctx, organizationID)
	if err != nil {
		return transport.SettingsResponse{}, err
	}
	if thresholds.HotLower > current.ScoreMax {
		return transport.SettingsResponse{}, apperr.InvalidFields("invalid temperature thresholds", []apperr.FieldError{{
			Field:   "hotLower",
			Message: fmt.Sprintf("must not exceed the score maximum %g", current.ScoreMax),
		}})
	}
	current.Thresholds = thresholds
	current.Profile = ""

	return s.save(ctx, current)
}

// ApplyProfile replaces weights, thresholds and score range with a built-in profile.
func (s *Service) ApplyProfile(ctx context.Context, organizationID uuid.UUID, req transport.ApplyProfileRequest) (transport.SettingsResponse, error) {
	name := strings.ToLower(strings.TrimSpace(req.Profile))
	profile, ok := scoring.LookupProfile(name)
	if !ok {
		return transport.SettingsResponse{}, apperr.NotFound("scoring profile not found").
			WithDetails(map[string][]string{"profiles": scoring.ProfileNames()})
	}

	return s.save(ctx, repository.Settings{
		OrganizationID: organizationID,
		Profile:        profile.Name,
		ScoreMax:       profile.ScoreMax,
		Weights:        profile.Weights,
		Thresholds:     profile.Thresholds,
	})
}

// ListProfiles returns the built-in profiles.
func (s *Service) ListProfiles() []transport.ProfileResponse {
	names := scoring.ProfileNames()
	out := make([]transport.ProfileResponse, 0, len(names))
	for _, name := range names {
		p, _ := scoring.LookupProfile(name)
		out = append(out, transport.ProfileResponse{
			Name:        p.Name,
			Description: p.Description,
			ScoreMax:    p.ScoreMax,
			Weights:     p.Weights,
			Thresholds:  p.Thresholds,
		})
	}
	return out
}

func (s *Service) save(ctx context.Context, settings repository.Settings) (transport.SettingsResponse, error) {
	saved, err := s.repo.Upsert(ctx, settings)
	if err != nil {
		return transport.SettingsResponse{}, err
	}
	if err := s.cache.Delete(ctx, saved.OrganizationID.String()); err != nil {
		s.log.Warn("scoring settings cache invalidation failed", "organizationId", saved.OrganizationID, "error", err)
	}

	resp := toSettingsResponse(saved, false)
	if !resp.Diagnostics.WeightsValid {
		s.log.ScoringWarning(saved.OrganizationID.String(), resp.Diagnostics.WeightSum, resp.Diagnostics.Warning)
	}
	s.log.Info("scoring settings updated", "organizationId", saved.OrganizationID, "profile", saved.Profile)

	s.bus.Publish(ctx, events.ScoringSettingsChanged{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: saved.OrganizationID,
		Profile:        saved.Profile,
		WeightsValid:   resp.Diagnostics.WeightsValid,
	})
	return resp, nil
}

func toSettingsResponse(s repository.Settings, isDefault bool) transport.SettingsResponse {
	diag := transport.Diagnostics{WeightSum: s.Weights.Sum(), WeightsValid: true}
	if err := s.Weights.Validate(); err != nil {
		diag.WeightsValid = false
		diag.Warning = err.Error()
	}

	resp := transport.SettingsResponse{
		Profile:     s.Profile,
		ScoreMax:    s.ScoreMax,
		Weights:     s.Weights,
		Thresholds:  s.Thresholds,
		Diagnostics: diag,
		IsDefault:   isDefault,
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
