// Package ports defines what the leads module needs from other modules.
// Implementations live in internal/adapters.
package ports

import (
	"context"

	"leadscout_backend/internal/leads/scoring"

	"github.com/google/uuid"
)

// ScoringSettings is the configuration leads are scored under.
type ScoringSettings struct {
	Profile    string
	ScoreMax   float64
	Weights    scoring.Weights
	Thresholds scoring.Thresholds
}

// ScoringSettingsProvider resolves the current scoring settings of an organization.
type ScoringSettingsProvider interface {
	ScoringSettings(ctx context.Context, organizationID uuid.UUID) (ScoringSettings, error)
}
