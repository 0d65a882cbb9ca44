package transport

import (
	"time"

	"leadscout_backend/internal/leads/scoring"
)

type UpdateWeightsRequest struct {
	Weights map[string]float64 `json:"weights" validate:"required,min=1"`
	// Strict rejects weights that do not sum to 100 instead of saving them with a warning.
	Strict bool `json:"strict"`
}

type UpdateThresholdsRequest struct {
	ColdUpper *float64 `json:"coldUpper" validate:"required"`
	WarmUpper *float64 `json:"warmUpper" validate:"required"`
	HotLower  *float64 `json:"hotLower" validate:"required"`
}

type ApplyProfileRequest struct {
	Profile string `json:"profile" validate:"required,max=50"`
}

type Diagnostics struct {
	WeightSum    float64 `json:"weightSum"`
	WeightsValid bool    `json:"weightsValid"`
	Warning      string  `json:"warning,omitempty"`
}

type SettingsResponse struct {
	Profile     string             `json:"profile"`
	ScoreMax    float64            `json:"scoreMax"`
	Weights     scoring.Weights    `json:"weights"`
	Thresholds  scoring.Thresholds `json:"thresholds"`
	Diagnostics Diagnostics        `json:"diagnostics"`
	IsDefault   bool               `json:"isDefault"`
	UpdatedAt   *time.Time         `json:"updatedAt"`
}

type ProfileResponse struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ScoreMax    float64            `json:"scoreMax"`
	Weights     scoring.Weights    `json:"weights"`
	Thresholds  scoring.Thresholds `json:"thresholds"`
}
