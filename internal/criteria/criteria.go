// Package criteria models the targeting predicate shared by lead filters and
// audience segments. A nil pointer or empty list marks a sub-criterion as unset;
// unset sub-criteria are satisfied by every lead.
package criteria

import (
	"fmt"
	"math"
	"strings"

	"leadscout_backend/internal/leads/domain"
	"leadscout_backend/platform/apperr"
)

// IntRange is inclusive on both bounds.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FloatRange is inclusive on both bounds.
type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// StageRange spans buying stages from From to To inclusive, in journey order.
type StageRange struct {
	From domain.BuyingStage `json:"from"`
	To   domain.BuyingStage `json:"to"`
}

type Demographics struct {
	AgeRange  *IntRange `json:"ageRange,omitempty"`
	Locations []string  `json:"locations,omitempty"`
	Interests []string  `json:"interests,omitempty"`
}

type Behavior struct {
	// Engagement bounds the lead's engagement rate, in percent.
	Engagement     *FloatRange            `json:"engagement,omitempty"`
	ActivityLevels []domain.ActivityLevel `json:"activityLevels,omitempty"`
}

// Criteria is a conjunction of optional sub-criteria.
type Criteria struct {
	Demographics *Demographics     `json:"demographics,omitempty"`
	Behavior     *Behavior         `json:"behavior,omitempty"`
	Platforms    []domain.Platform `json:"platforms,omitempty"`
	Triggers     []string          `json:"triggers,omitempty"`
	BuyingStage  *StageRange       `json:"buyingStage,omitempty"`
}

// IsEmpty reports whether no sub-criterion is specified.
func (c Criteria) IsEmpty() bool {
	return c.Demographics.isEmpty() && c.Behavior.isEmpty() &&
		len(c.Platforms) == 0 && len(c.Triggers) == 0 && c.BuyingStage == nil
}

func (d *Demographics) isEmpty() bool {
	return d == nil || (d.AgeRange == nil && len(d.Locations) == 0 && len(d.Interests) == 0)
}

func (b *Behavior) isEmpty() bool {
	return b == nil || (b.Engagement == nil && len(b.ActivityLevels) == 0)
}

// New validates c and returns a normalized copy: lists trimmed and
// de-duplicated, enumerations lower-cased, empty sub-objects dropped.
// Every inconsistent field is reported in the error details.
func New(c Criteria) (Criteria, error) {
	var fields []apperr.FieldError
	invalid := func(field, format string, args ...any) {
		fields = append(fields, apperr.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	var out Criteria

	if d := c.Demographics; d != nil {
		nd := &Demographics{
			Locations: domain.NormalizeList(d.Locations),
			Interests: domain.NormalizeList(d.Interests),
		}
		if r := d.AgeRange; r != nil {
			switch {
			case r.Min < 0:
				invalid("demographics.ageRange.min", "must not be negative")
			case r.Min > r.Max:
				invalid("demographics.ageRange", "min %d is greater than max %d", r.Min, r.Max)
			default:
				copied := *r
				nd.AgeRange = &copied
			}
		}
		if !nd.isEmpty() {
			out.Demographics = nd
		}
	}

	if b := c.Behavior; b != nil {
		nb := &Behavior{}
		if r := b.Engagement; r != nil {
			switch {
			case !isFinite(r.Min) || !isFinite(r.Max):
				invalid("behavior.engagement", "bounds must be finite numbers")
			case r.Min < 0:
				invalid("behavior.engagement.min", "must not be negative")
			case r.Min > r.Max:
				invalid("behavior.engagement", "min %g is greater than max %g", r.Min, r.Max)
			default:
				copied := *r
				nb.Engagement = &copied
			}
		}
		seen := make(map[domain.ActivityLevel]struct{})
		for i, raw := range b.ActivityLevels {
			level, ok := domain.ParseActivityLevel(string(raw))
			if !ok {
				invalid(fmt.Sprintf("behavior.activityLevels[%d]", i), "unknown activity level %q", raw)
				continue
			}
			if _, dup := seen[level]; !dup {
				seen[level] = struct{}{}
				nb.ActivityLevels = append(nb.ActivityLevels, level)
			}
		}
		if !nb.isEmpty() {
			out.Behavior = nb
		}
	}

	seenPlatforms := make(map[domain.Platform]struct{})
	for i, raw := range c.Platforms {
		p, ok := domain.ParsePlatform(string(raw))
		if !ok {
			invalid(fmt.Sprintf("platforms[%d]", i), "unknown platform %q", raw)
			continue
		}
		if _, dup := seenPlatforms[p]; !dup {
			seenPlatforms[p] = struct{}{}
			out.Platforms = append(out.Platforms, p)
		}
	}

	out.Triggers = domain.NormalizeList(c.Triggers)

	if r := c.BuyingStage; r != nil {
		from, fromOK := domain.ParseBuyingStage(string(r.From))
		to, toOK := domain.ParseBuyingStage(string(r.To))
		switch {
		case !fromOK:
			invalid("buyingStage.from", "unknown buying stage %q", r.From)
		case !toOK:
			invalid("buyingStage.to", "unknown buying stage %q", r.To)
		case from.Rank() > to.Rank():
			invalid("buyingStage", "%s comes after %s", from, to)
		default:
			out.BuyingStage = &StageRange{From: from, To: to}
		}
	}

	if len(fields) > 0 {
		return Criteria{}, apperr.InvalidFields("invalid criteria", fields)
	}
	return out, nil
}

// Matches reports whether lead satisfies every specified sub-criterion.
// Ranges are inclusive and list checks need a non-empty case-insensitive
// intersection. A lead with no value for a specified field fails it.
func Matches(lead domain.Lead, c Criteria) bool {
	if d := c.Demographics; d != nil {
		if r := d.AgeRange; r != nil {
			if lead.Age == nil || *lead.Age < r.Min || *lead.Age > r.Max {
				return false
			}
		}
		if len(d.Locations) > 0 && !containsFold(d.Locations, lead.Location) {
			return false
		}
		if len(d.Interests) > 0 && !intersectsFold(d.Interests, lead.Interests) {
			return false
		}
	}

	if b := c.Behavior; b != nil {
		if r := b.Engagement; r != nil {
			if lead.EngagementRate < r.Min || lead.EngagementRate > r.Max {
				return false
			}
		}
		if len(b.ActivityLevels) > 0 && !containsFold(toStrings(b.ActivityLevels), string(lead.ActivityLevel)) {
			return false
		}
	}

	if len(c.Platforms) > 0 && !intersectsFold(toStrings(c.Platforms), lead.PlatformNames()) {
		return false
	}

	if len(c.Triggers) > 0 && !intersectsFold(c.Triggers, lead.Triggers) {
		return false
	}

	if r := c.BuyingStage; r != nil {
		rank := domain.BuyingStage(strings.ToLower(string(lead.BuyingStage))).Rank()
		from := domain.BuyingStage(strings.ToLower(string(r.From))).Rank()
		to := domain.BuyingStage(strings.ToLower(string(r.To))).Rank()
		if rank < 0 || rank < from || rank > to {
			return false
		}
	}

	return true
}

func containsFold(list []string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}

func intersectsFold(want, have []string) bool {
	for _, h := range have {
		if containsFold(want, h) {
			return true
		}
	}
	return false
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
