package scoring

import (
	"fmt"
	"math"

	"leadscout_backend/internal/leads/domain"
	"leadscout_backend/platform/apperr"
)

// Thresholds partition the score range into Cold, Warm and Hot.
// A valid set satisfies ColdUpper < WarmUpper <= HotLower.
//
// WarmUpper only orders the set. Warm covers every score above ColdUpper
// and below HotLower, so a score in the gap (WarmUpper, HotLower) is Warm
// even though it exceeds WarmUpper.
type Thresholds struct {
	ColdUpper float64 `json:"coldUpper" yaml:"cold_upper"`
	WarmUpper float64 `json:"warmUpper" yaml:"warm_upper"`
	HotLower  float64 `json:"hotLower" yaml:"hot_lower"`
}

// ThresholdOverlapError names the threshold that breaks the ordering.
type ThresholdOverlapError struct {
	Field      string
	Thresholds Thresholds
	Reason     string
}

func (e *ThresholdOverlapError) Error() string {
	return fmt.Sprintf("ThresholdOverlapError: %s %s (cold=%g warm=%g hot=%g)",
		e.Field, e.Reason, e.Thresholds.ColdUpper, e.Thresholds.WarmUpper, e.Thresholds.HotLower)
}

func (e *ThresholdOverlapError) AppErr() *apperr.Error {
	return apperr.InvalidFields("invalid temperature thresholds", []apperr.FieldError{{
		Field:   e.Field,
		Message: e.Reason,
	}})
}

// Validate checks the ordering invariant.
func (t Thresholds) Validate() error {
	overlap := func(field, reason string) error {
		return &ThresholdOverlapError{Field: field, Thresholds: t, Reason: reason}
	}
	switch {
	case !finite(t.ColdUpper):
		return overlap("coldUpper", "must be a finite number")
	case !finite(t.WarmUpper):
		return overlap("warmUpper", "must be a finite number")
	case !finite(t.HotLower):
		return overlap("hotLower", "must be a finite number")
	case t.ColdUpper >= t.WarmUpper:
		return overlap("coldUpper", "must be strictly below warmUpper")
	case t.WarmUpper > t.HotLower:
		return overlap("warmUpper", "must not exceed hotLower")
	}
	return nil
}

// Classify returns Hot when score >= HotLower, otherwise Cold when
// score <= ColdUpper, otherwise Warm. Scores between WarmUpper and HotLower
// are Warm. Invalid thresholds yield a *ThresholdOverlapError and no tier.
func Classify(score float64, t Thresholds) (domain.Temperature, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if math.IsNaN(score) {
		return "", fmt.Errorf("cannot classify NaN score")
	}
	switch {
	case score >= t.HotLower:
		return domain.TemperatureHot, nil
	case score <= t.ColdUpper:
		return domain.TemperatureCold, nil
	default:
		return domain.TemperatureWarm, nil
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
