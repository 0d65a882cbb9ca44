package scoring

import (
	"context"
	"encoding/json"
	"errors"

	"leadscout_backend/internal/leads/domain"

	"golang.org/x/sync/errgroup"
)

// Config is everything needed to turn a lead into a ScoredLead.
type Config struct {
	Engine     *Engine
	Weights    Weights
	Thresholds Thresholds
}

// NewConfig builds a Config scoring with the default normalizers over baselines.
func NewConfig(baselines Baselines, scoreMax float64, weights Weights, thresholds Thresholds) Config {
	return Config{
		Engine:     NewEngine(DefaultNormalizers(baselines), scoreMax),
		Weights:    weights,
		Thresholds: thresholds,
	}
}

// ScoredLead pairs a lead with a score and temperature computed together
// under one Config. It can only be built by Evaluate.
type ScoredLead struct {
	lead        domain.Lead
	result      Result
	temperature domain.Temperature
}

func (s ScoredLead) Lead() domain.Lead               { return s.lead }
func (s ScoredLead) Score() float64                  { return s.result.Score }
func (s ScoredLead) Temperature() domain.Temperature { return s.temperature }
func (s ScoredLead) Result() Result                  { return s.result }

type scoredLeadJSON struct {
	domain.Lead
	IntentScore float64            `json:"intentScore"`
	ScoreMax    float64            `json:"scoreMax"`
	Temperature domain.Temperature `json:"temperature"`
	Factors     []FactorScore      `json:"factors"`
}

// MarshalJSON flattens the lead and adds its derived fields.
func (s ScoredLead) MarshalJSON() ([]byte, error) {
	return json.Marshal(scoredLeadJSON{
		Lead:        s.lead,
		IntentScore: s.result.Score,
		ScoreMax:    s.result.ScoreMax,
		Temperature: s.temperature,
		Factors:     s.result.Factors,
	})
}

// Evaluate scores and classifies lead. A *WeightSumError is returned
// alongside a valid ScoredLead; any other error returns no ScoredLead.
func Evaluate(lead domain.Lead, cfg Config) (ScoredLead, error) {
	if cfg.Engine == nil {
		return ScoredLead{}, errors.New("scoring config has no engine")
	}

	result, err := cfg.Engine.Score(lead, cfg.Weights)
	var sumErr *WeightSumError
	if err != nil && !errors.As(err, &sumErr) {
		return ScoredLead{}, err
	}

	temperature, classifyErr := Classify(result.Score, cfg.Thresholds)
	if classifyErr != nil {
		return ScoredLead{}, classifyErr
	}

	return ScoredLead{lead: lead, result: result, temperature: temperature}, err
}

// ScoreAll evaluates every lead on a pool of at most workers goroutines and
// returns the results in input order. Configuration errors are reported once,
// before any lead is scored; a weight-sum warning comes back with the results.
func ScoreAll(ctx context.Context, leads []domain.Lead, cfg Config, workers int) ([]ScoredLead, error) {
	if cfg.Engine == nil {
		return nil, errors.New("scoring config has no engine")
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	warning := cfg.Weights.Validate()
	var sumErr *WeightSumError
	if warning != nil && !errors.As(warning, &sumErr) {
		return nil, warning
	}

	if workers < 1 {
		workers = 1
	}

	out := make([]ScoredLead, len(leads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range leads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scored, err := Evaluate(leads[i], cfg)
			if err != nil && !errors.As(err, new(*WeightSumError)) {
				return err
			}
			out[i] = scored
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, warning
}
