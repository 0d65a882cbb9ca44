package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Signals are the raw behavioral observations the scoring factors read.
type Signals struct {
	// KeywordHits counts buying-intent keyword mentions in the observation window.
	KeywordHits int `json:"keywordHits"`
	// EngagementVelocity is interactions per day over the observation window.
	EngagementVelocity float64 `json:"engagementVelocity"`
}

// Lead is a prospect with the raw attributes scoring and matching read.
// Score and temperature are never stored on it; see scoring.Evaluate.
type Lead struct {
	ID             uuid.UUID           `json:"id"`
	OrganizationID uuid.UUID           `json:"organizationId"`
	Name           string              `json:"name"`
	Email          string              `json:"email,omitempty"`
	Phone          string              `json:"phone,omitempty"`
	Handles        map[Platform]string `json:"handles,omitempty"`
	Company        string              `json:"company"`
	Title          string              `json:"title"`
	Industry       string              `json:"industry"`
	Location       string              `json:"location"`
	Age            *int                `json:"age"`
	Platforms      []Platform          `json:"platforms"`
	Followers      int                 `json:"followers"`
	// EngagementRate is a percentage (4.2 means 4.2%).
	EngagementRate float64 `json:"engagementRate"`
	// InfluenceScore is on a 0-100 scale.
	InfluenceScore float64       `json:"influenceScore"`
	BuyingStage    BuyingStage   `json:"buyingStage"`
	ActivityLevel  ActivityLevel `json:"activityLevel,omitempty"`
	Status         Status        `json:"status"`
	Triggers       []string      `json:"triggers"`
	PainPoints     []string      `json:"painPoints"`
	Interests      []string      `json:"interests"`
	Signals        Signals       `json:"signals"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// PlatformNames returns the lead's platforms as plain strings.
func (l Lead) PlatformNames() []string {
	names := make([]string, 0, len(l.Platforms))
	for _, p := range l.Platforms {
		names = append(names, string(p))
	}
	return names
}

// NormalizeList trims, drops empties and removes case-insensitive duplicates,
// keeping the first spelling of each value.
func NormalizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
