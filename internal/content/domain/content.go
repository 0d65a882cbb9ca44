// Package domain holds content items and the reusable prompt templates they
// are drafted from.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"leadscout_backend/internal/content/template"
	leaddomain "leadscout_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ItemStatus is the publishing state of a content item.
type ItemStatus string

const (
	StatusDraft     ItemStatus = "draft"
	StatusScheduled ItemStatus = "scheduled"
	StatusPublished ItemStatus = "published"
	StatusArchived  ItemStatus = "archived"
)

// ParseItemStatus accepts the statuses a client may set. Archived is reached
// only through archiving.
func ParseItemStatus(s string) (ItemStatus, bool) {
	status := ItemStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case StatusDraft, StatusScheduled, StatusPublished:
		return status, true
	default:
		return status, false
	}
}

// Item is a piece of content for one platform.
type Item struct {
	ID             uuid.UUID           `json:"id"`
	OrganizationID uuid.UUID           `json:"organizationId"`
	Title          string              `json:"title"`
	Body           string              `json:"body"`
	Platform       leaddomain.Platform `json:"platform"`
	Category       string              `json:"category"`
	Status         ItemStatus          `json:"status"`
	// QualityScore is on a 0-100 scale.
	QualityScore float64    `json:"qualityScore"`
	Engagement   float64    `json:"engagement"`
	ScheduledAt  *time.Time `json:"scheduledAt"`
	ArchivedAt   *time.Time `json:"archivedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Archived reports whether the item was retired.
func (i Item) Archived() bool {
	return i.Status == StatusArchived
}

// Template is a named prompt with {name} placeholders.
type Template struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Name           string    `json:"name"`
	Platform       string    `json:"platform"`
	Category       string    `json:"category"`
	Prompt         string    `json:"prompt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Variables derives the placeholder names from the prompt. They are never stored.
func (t Template) Variables() []string {
	return template.ExtractVariables(t.Prompt)
}

type templateAlias Template

// MarshalJSON adds the derived variables.
func (t Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		templateAlias
		Variables []string `json:"variables"`
	}{templateAlias: templateAlias(t), Variables: t.Variables()})
}
