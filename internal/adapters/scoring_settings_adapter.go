package adapters

import (
	"context"
	"maps"

	leadports "leadscout_backend/internal/leads/ports"
	settingsrepo "leadscout_backend/internal/settings/repository"

	"github.com/google/uuid"
)

// CurrentSettingsReader is the narrow interface for resolving an organization's
// stored (or default) scoring settings.
type CurrentSettingsReader interface {
	Current(ctx context.Context, organizationID uuid.UUID) (settingsrepo.Settings, error)
}

// ScoringSettingsAdapter implements leads/ports.ScoringSettingsProvider using
// the settings service.
type ScoringSettingsAdapter struct {
	svc CurrentSettingsReader
}

// NewScoringSettingsAdapter creates a new adapter.
func NewScoringSettingsAdapter(svc CurrentSettingsReader) *ScoringSettingsAdapter {
	return &ScoringSettingsAdapter{svc: svc}
}

// ScoringSettings returns the weights and thresholds leads are scored under.
func (a *ScoringSettingsAdapter) ScoringSettings(ctx context.Context, organizationID uuid.UUID) (leadports.ScoringSettings, error) {
	s, err := a.svc.Current(ctx, organizationID)
	if err != nil {
		return leadports.ScoringSettings{}, err
	}
	return leadports.ScoringSettings{
		Profile:    s.Profile,
		ScoreMax:   s.ScoreMax,
		Weights:    maps.Clone(s.Weights),
		Thresholds: s.Thresholds,
	}, nil
}

// Compile-time check.
var _ leadports.ScoringSettingsProvider = (*ScoringSettingsAdapter)(nil)
