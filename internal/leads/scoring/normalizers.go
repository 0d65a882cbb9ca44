package scoring

import (
	"math"
	"slices"

	"leadscout_backend/internal/leads/domain"
)

// Normalizer maps one factor of a lead onto [0,1]. The engine clamps
// whatever it returns, so a normalizer may overshoot.
type Normalizer func(domain.Lead) float64

// Baselines are the signal levels that count as a full-strength factor.
type Baselines struct {
	KeywordHits        float64 `json:"keywordHits"`
	EngagementVelocity float64 `json:"engagementVelocity"`
	Followers          float64 `json:"followers"`
	EngagementRate     float64 `json:"engagementRate"`
}

// MinimumBaselines floor every derived baseline, so a quiet population
// does not turn weak signals into maximal ones.
var MinimumBaselines = Baselines{
	KeywordHits:        10,
	EngagementVelocity: 20,
	Followers:          10000,
	EngagementRate:     5,
}

// triggerSaturation is the number of distinct triggers that counts as full density.
const triggerSaturation = 5

// baselinePercentile is the population rank used as the full-strength mark.
const baselinePercentile = 0.9

// BaselinesFrom derives baselines from a population: the 90th percentile of
// each signal, floored at MinimumBaselines. The result depends only on the
// multiset of values, not on their order.
func BaselinesFrom(population []domain.Lead) Baselines {
	if len(population) == 0 {
		return MinimumBaselines
	}

	hits := make([]float64, 0, len(population))
	velocity := make([]float64, 0, len(population))
	followers := make([]float64, 0, len(population))
	rate := make([]float64, 0, len(population))
	for _, lead := range population {
		hits = append(hits, float64(lead.Signals.KeywordHits))
		velocity = append(velocity, lead.Signals.EngagementVelocity)
		followers = append(followers, float64(lead.Followers))
		rate = append(rate, lead.EngagementRate)
	}

	return Baselines{
		KeywordHits:        math.Max(percentile(hits, baselinePercentile), MinimumBaselines.KeywordHits),
		EngagementVelocity: math.Max(percentile(velocity, baselinePercentile), MinimumBaselines.EngagementVelocity),
		Followers:          math.Max(percentile(followers, baselinePercentile), MinimumBaselines.Followers),
		EngagementRate:     math.Max(percentile(rate, baselinePercentile), MinimumBaselines.EngagementRate),
	}
}

// DefaultNormalizers returns a normalizer for every known factor.
func DefaultNormalizers(b Baselines) map[Factor]Normalizer {
	return map[Factor]Normalizer{
		FactorKeywordIntensity: func(l domain.Lead) float64 {
			return ratio(float64(l.Signals.KeywordHits), b.KeywordHits)
		},
		FactorEngagementVelocity: func(l domain.Lead) float64 {
			return ratio(l.Signals.EngagementVelocity, b.EngagementVelocity)
		},
		// Follower counts span orders of magnitude, so social proof is log-scaled.
		FactorSocialProof: func(l domain.Lead) float64 {
			if l.Followers <= 0 {
				return 0
			}
			return ratio(math.Log10(1+float64(l.Followers)), math.Log10(1+b.Followers))
		},
		FactorInfluence: func(l domain.Lead) float64 {
			return l.InfluenceScore / 100
		},
		FactorEngagementRate: func(l domain.Lead) float64 {
			return ratio(l.EngagementRate, b.EngagementRate)
		},
		FactorBuyingStage: func(l domain.Lead) float64 {
			rank := l.BuyingStage.Rank()
			if rank < 0 {
				return 0
			}
			return float64(rank) / float64(len(domain.BuyingStages)-1)
		},
		FactorTriggerDensity: func(l domain.Lead) float64 {
			return float64(len(domain.NormalizeList(l.Triggers))) / triggerSaturation
		},
	}
}

// percentile uses the nearest-rank method on a sorted copy.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func ratio(value, full float64) float64 {
	if full <= 0 {
		return 0
	}
	return value / full
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 1:
		return 1
	default:
		return v
	}
}
