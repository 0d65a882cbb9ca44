package scoring

import (
	"errors"
	"math"
	"testing"

	"leadscout_backend/internal/leads/domain"
)

func constant(v float64) Normalizer {
	return func(domain.Lead) float64 { return v }
}

func leadScoutEngine() *Engine {
	return NewEngine(map[Factor]Normalizer{
		FactorKeywordIntensity:   constant(1.0),
		FactorEngagementVelocity: constant(0.8),
		FactorSocialProof:        constant(0.5),
		FactorInfluence:          constant(0.3),
	}, 0)
}

var leadScoutWeights = Weights{
	FactorKeywordIntensity:   40,
	FactorEngagementVelocity: 30,
	FactorSocialProof:        20,
	FactorInfluence:          10,
}

var leadScoutThresholds = Thresholds{ColdUpper: 3.9, WarmUpper: 6.9, HotLower: 7.0}

func TestScoreWeightedSum(t *testing.T) {
	result, err := leadScoutEngine().Score(domain.Lead{}, leadScoutWeights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (40*1.0 + 30*0.8 + 20*0.5 + 10*0.3) / 100 * 10
	if result.Score != 7.7 {
		t.Fatalf("score = %v, want 7.7", result.Score)
	}
	if result.ScoreMax != DefaultScoreMax {
		t.Fatalf("score max = %v, want %v", result.ScoreMax, DefaultScoreMax)
	}
	if len(result.Factors) != 4 {
		t.Fatalf("expected 4 factor lines, got %d", len(result.Factors))
	}

	temp, err := Classify(result.Score, leadScoutThresholds)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if temp != domain.TemperatureHot {
		t.Fatalf("temperature = %s, want hot", temp)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	engine := NewEngine(DefaultNormalizers(MinimumBaselines), 0)
	lead := domain.Lead{
		Followers:      5400,
		InfluenceScore: 62,
		Signals:        domain.Signals{KeywordHits: 7, EngagementVelocity: 12.5},
	}
	first, err1 := engine.Score(lead, leadScoutWeights)
	second, err2 := engine.Score(lead, leadScoutWeights)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v %v", err1, err2)
	}
	if first.Score != second.Score {
		t.Fatalf("scores differ: %v vs %v", first.Score, second.Score)
	}
	t1, _ := Classify(first.Score, leadScoutThresholds)
	t2, _ := Classify(second.Score, leadScoutThresholds)
	if t1 != t2 {
		t.Fatalf("temperatures differ: %s vs %s", t1, t2)
	}
}

func TestScoreStaysInRange(t *testing.T) {
	engine := NewEngine(DefaultNormalizers(MinimumBaselines), 0)
	weights := Weights{
		FactorKeywordIntensity:   20,
		FactorEngagementVelocity: 10,
		FactorSocialProof:        10,
		FactorInfluence:          10,
		FactorEngagementRate:     15,
		FactorBuyingStage:        20,
		FactorTriggerDensity:     15,
	}
	leads := []domain.Lead{
		{},
		{Followers: -10, InfluenceScore: -5, EngagementRate: -1},
		{
			Followers:      50_000_000,
			InfluenceScore: 250,
			EngagementRate: 80,
			BuyingStage:    domain.StagePurchase,
			Triggers:       []string{"a", "b", "c", "d", "e", "f", "g"},
			Signals:        domain.Signals{KeywordHits: 1000, EngagementVelocity: 1e6},
		},
	}
	for i, lead := range leads {
		result, err := engine.Score(lead, weights)
		if err != nil {
			t.Fatalf("lead %d: unexpected error %v", i, err)
		}
		if result.Score < 0 || result.Score > DefaultScoreMax {
			t.Fatalf("lead %d: score %v outside [0, %v]", i, result.Score, DefaultScoreMax)
		}
	}
}

func TestScoreReportsWeightSumMismatch(t *testing.T) {
	weights := Weights{
		FactorKeywordIntensity:   40,
		FactorEngagementVelocity: 30,
		FactorSocialProof:        10,
		FactorInfluence:          10,
	}
	result, err := leadScoutEngine().Score(domain.Lead{}, weights)

	var sumErr *WeightSumError
	if !errors.As(err, &sumErr) {
		t.Fatalf("expected WeightSumError, got %v", err)
	}
	if sumErr.Sum != 90 {
		t.Fatalf("reported sum = %v, want 90", sumErr.Sum)
	}
	// Weights are used as given: (40 + 24 + 5 + 3) / 100 * 10.
	if result.Score != 7.2 {
		t.Fatalf("score = %v, want 7.2", result.Score)
	}
}

func TestScoreToleratesRoundingWithinEpsilon(t *testing.T) {
	weights := Weights{
		FactorKeywordIntensity:   33.333,
		FactorEngagementVelocity: 33.333,
		FactorSocialProof:        33.334,
	}
	if _, err := leadScoutEngine().Score(domain.Lead{}, weights); err != nil {
		t.Fatalf("sum within tolerance must not warn: %v", err)
	}
}

func TestScoreRejectsUnusableWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
	}{
		{name: "negative", weights: Weights{FactorKeywordIntensity: -10, FactorInfluence: 110}},
		{name: "above 100", weights: Weights{FactorKeywordIntensity: 150}},
		{name: "NaN", weights: Weights{FactorKeywordIntensity: math.NaN()}},
		{name: "no normalizer", weights: Weights{FactorKeywordIntensity: 50, Factor("sentiment"): 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := leadScoutEngine().Score(domain.Lead{}, tt.weights)
			var weightErr *InvalidWeightError
			if !errors.As(err, &weightErr) {
				t.Fatalf("expected InvalidWeightError, got %v", err)
			}
			if result.Factors != nil || result.Score != 0 {
				t.Fatalf("fatal weight errors must not return a result: %+v", result)
			}
		})
	}
}

func TestZeroWeightFactorWithoutNormalizerIsIgnored(t *testing.T) {
	weights := Weights{FactorKeywordIntensity: 100, Factor("sentiment"): 0}
	result, err := leadScoutEngine().Score(domain.Lead{}, weights)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 10 {
		t.Fatalf("score = %v, want 10", result.Score)
	}
}

func TestNormalizersClamp(t *testing.T) {
	engine := NewEngine(map[Factor]Normalizer{
		FactorKeywordIntensity: constant(3),
		FactorInfluence:        constant(math.NaN()),
	}, 100)
	result, err := engine.Score(domain.Lead{}, Weights{FactorKeywordIntensity: 50, FactorInfluence: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 50 {
		t.Fatalf("score = %v, want 50", result.Score)
	}
}
