package scoring

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"leadscout_backend/platform/apperr"
)

// Factor names one weighted input of the intent score.
type Factor string

const (
	FactorKeywordIntensity   Factor = "keyword_intensity"
	FactorEngagementVelocity Factor = "engagement_velocity"
	FactorSocialProof        Factor = "social_proof"
	FactorInfluence          Factor = "influence"
	FactorEngagementRate     Factor = "engagement_rate"
	FactorBuyingStage        Factor = "buying_stage"
	FactorTriggerDensity     Factor = "trigger_density"
)

// KnownFactors lists every factor DefaultNormalizers can normalize.
var KnownFactors = []Factor{
	FactorKeywordIntensity,
	FactorEngagementVelocity,
	FactorSocialProof,
	FactorInfluence,
	FactorEngagementRate,
	FactorBuyingStage,
	FactorTriggerDensity,
}

// ParseFactor accepts a known factor name case-insensitively.
func ParseFactor(s string) (Factor, bool) {
	f := Factor(strings.ToLower(strings.TrimSpace(s)))
	return f, slices.Contains(KnownFactors, f)
}

// WeightSumTolerance is how far the weight total may drift from 100.
const WeightSumTolerance = 0.01

// Weights maps each active factor to a weight in [0,100]. The weights of a
// consistent configuration sum to 100.
type Weights map[Factor]float64

// Sum adds every weight.
func (w Weights) Sum() float64 {
	var sum float64
	for _, f := range w.factors() {
		sum += w[f]
	}
	return sum
}

// Validate returns an *InvalidWeightError for a weight outside [0,100], or a
// *WeightSumError when the total is not 100 within WeightSumTolerance.
func (w Weights) Validate() error {
	for _, f := range w.factors() {
		if err := checkWeight(f, w[f]); err != nil {
			return err
		}
	}
	if sum := w.Sum(); math.Abs(sum-100) > WeightSumTolerance {
		return &WeightSumError{Sum: roundTo(sum, 4), Tolerance: WeightSumTolerance}
	}
	return nil
}

// factors returns the keys in a fixed order so sums and breakdowns are reproducible.
func (w Weights) factors() []Factor {
	keys := make([]Factor, 0, len(w))
	for f := range w {
		keys = append(keys, f)
	}
	slices.Sort(keys)
	return keys
}

func checkWeight(f Factor, weight float64) error {
	switch {
	case math.IsNaN(weight) || math.IsInf(weight, 0):
		return &InvalidWeightError{Factor: f, Weight: weight, Reason: "weight must be a finite number"}
	case weight < 0:
		return &InvalidWeightError{Factor: f, Weight: weight, Reason: "weight must not be negative"}
	case weight > 100:
		return &InvalidWeightError{Factor: f, Weight: weight, Reason: "weight must not exceed 100"}
	}
	return nil
}

// WeightSumError reports weights that do not add up to 100. It is not fatal:
// Score returns a complete Result together with it, computed with the
// weights as given.
type WeightSumError struct {
	Sum       float64
	Tolerance float64
}

func (e *WeightSumError) Error() string {
	return fmt.Sprintf("InvalidWeightConfiguration: weights sum to %g, expected 100 ± %g", e.Sum, e.Tolerance)
}

// AppErr converts the warning for callers that must reject it, such as a strict save.
func (e *WeightSumError) AppErr() *apperr.Error {
	return apperr.InvalidFields("weights must sum to 100", []apperr.FieldError{{
		Field:   "weights",
		Message: fmt.Sprintf("weights sum to %g, expected 100 ± %g", e.Sum, e.Tolerance),
	}})
}

// InvalidWeightError rejects a single unusable weight. No score is produced.
type InvalidWeightError struct {
	Factor Factor
	Weight float64
	Reason string
}

func (e *InvalidWeightError) Error() string {
	return fmt.Sprintf("invalid weight for %s (%g): %s", e.Factor, e.Weight, e.Reason)
}

func (e *InvalidWeightError) AppErr() *apperr.Error {
	return apperr.InvalidFields("invalid weight configuration", []apperr.FieldError{{
		Field:   "weights." + string(e.Factor),
		Message: e.Reason,
	}})
}

// WeightsFromMap parses factor names case-insensitively. Unknown or repeated
// factors are reported together as field errors under "weights.<name>".
func WeightsFromMap(raw map[string]float64) (Weights, error) {
	weights := make(Weights, len(raw))
	var fieldErrs []apperr.FieldError
	for name, w := range raw {
		f, ok := ParseFactor(name)
		if !ok {
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: "weights." + name, Message: "unknown scoring factor"})
			continue
		}
		if _, dup := weights[f]; dup {
			fieldErrs = append(fieldErrs, apperr.FieldError{Field: "weights." + name, Message: "factor given more than once"})
			continue
		}
		weights[f] = w
	}
	if len(fieldErrs) > 0 {
		slices.SortFunc(fieldErrs, func(a, b apperr.FieldError) int { return strings.Compare(a.Field, b.Field) })
		return nil, apperr.InvalidFields("invalid weight configuration", fieldErrs)
	}
	return weights, nil
}
