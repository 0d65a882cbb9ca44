// Package scoring turns a lead's raw signals into an intent score and a
// temperature tier. Everything here is a pure function of its inputs.
package scoring

import (
	"math"

	"leadscout_backend/internal/leads/domain"
)

const (
	// ModelVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic significantly.
	ModelVersion = "intent-v1"

	// DefaultScoreMax is the top of the score range.
	DefaultScoreMax = 10.0
)

// FactorScore is one line of the score breakdown.
type FactorScore struct {
	Factor     Factor  `json:"factor"`
	Normalized float64 `json:"normalized"`
	Weight     float64 `json:"weight"`
	Points     float64 `json:"points"`
}

// Result is a computed intent score with its breakdown.
type Result struct {
	Score     float64       `json:"score"`
	ScoreMax  float64       `json:"scoreMax"`
	WeightSum float64       `json:"weightSum"`
	Factors   []FactorScore `json:"factors"`
	Version   string        `json:"version"`
}

// Engine computes intent scores. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	scoreMax    float64
	normalizers map[Factor]Normalizer
}

// NewEngine creates an engine scoring into [0, scoreMax]. A non-positive
// scoreMax selects DefaultScoreMax.
func NewEngine(normalizers map[Factor]Normalizer, scoreMax float64) *Engine {
	if scoreMax <= 0 || math.IsNaN(scoreMax) || math.IsInf(scoreMax, 0) {
		scoreMax = DefaultScoreMax
	}
	copied := make(map[Factor]Normalizer, len(normalizers))
	for f, n := range normalizers {
		copied[f] = n
	}
	return &Engine{scoreMax: scoreMax, normalizers: copied}
}

// ScoreMax returns the top of the engine's score range.
func (e *Engine) ScoreMax() float64 {
	return e.scoreMax
}

// Score computes Σ(normalized_i × weight_i) / 100 × ScoreMax, rounded to two
// decimals. When the weights do not sum to 100 the full Result is returned
// together with a *WeightSumError; the weights are never rescaled. A weight
// outside [0,100], or a positive weight on a factor without a normalizer,
// returns an *InvalidWeightError and no Result.
func (e *Engine) Score(lead domain.Lead, weights Weights) (Result, error) {
	factors := weights.factors()
	breakdown := make([]FactorScore, 0, len(factors))

	var weighted, weightSum float64
	for _, f := range factors {
		w := weights[f]
		if err := checkWeight(f, w); err != nil {
			return Result{}, err
		}
		weightSum += w

		normalizer, ok := e.normalizers[f]
		if !ok {
			if w > 0 {
				return Result{}, &InvalidWeightError{Factor: f, Weight: w, Reason: "no normalizer for factor"}
			}
			breakdown = append(breakdown, FactorScore{Factor: f})
			continue
		}

		norm := clamp01(normalizer(lead))
		weighted += norm * w
		breakdown = append(breakdown, e.addFactor(f, norm, w))
	}

	result := Result{
		Score:     roundTo(weighted/100*e.scoreMax, 2),
		ScoreMax:  e.scoreMax,
		WeightSum: roundTo(weightSum, 4),
		Factors:   breakdown,
		Version:   ModelVersion,
	}

	if math.Abs(weightSum-100) > WeightSumTolerance {
		return result, &WeightSumError{Sum: result.WeightSum, Tolerance: WeightSumTolerance}
	}
	return result, nil
}

func (e *Engine) addFactor(f Factor, norm, weight float64) FactorScore {
	return FactorScore{
		Factor:     f,
		Normalized: roundTo(norm, 4),
		Weight:     weight,
		Points:     roundTo(norm*weight/100*e.scoreMax, 2),
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
