package transport

import (
	"time"

	"leadscout_backend/internal/content/domain"
	"leadscout_backend/internal/search"
)

type CreateItemRequest struct {
	Title        string     `json:"title" validate:"required,min=1,max=300"`
	Body         string     `json:"body" validate:"max=20000"`
	Platform     string     `json:"platform" validate:"required,platform"`
	Category     string     `json:"category" validate:"max=100"`
	Status       string     `json:"status" validate:"omitempty,oneof=draft scheduled published"`
	QualityScore float64    `json:"qualityScore" validate:"min=0,max=100"`
	Engagement   float64    `json:"engagement" validate:"min=0"`
	ScheduledAt  *time.Time `json:"scheduledAt"`
}

// UpdateItemRequest changes only the fields that are present.
type UpdateItemRequest struct {
	Title        *string    `json:"title" validate:"omitempty,min=1,max=300"`
	Body         *string    `json:"body" validate:"omitempty,max=20000"`
	Platform     *string    `json:"platform" validate:"omitempty,platform"`
	Category     *string    `json:"category" validate:"omitempty,max=100"`
	Status       *string    `json:"status" validate:"omitempty,oneof=draft scheduled published"`
	QualityScore *float64   `json:"qualityScore" validate:"omitempty,min=0,max=100"`
	Engagement   *float64   `json:"engagement" validate:"omitempty,min=0"`
	ScheduledAt  *time.Time `json:"scheduledAt"`
}

type ListItemsRequest struct {
	Search    string `form:"search" validate:"max=100"`
	Status    string `form:"status" validate:"max=20"`
	Platform  string `form:"platform" validate:"max=20"`
	Category  string `form:"category" validate:"max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=date title quality engagement"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ExportItemsRequest struct {
	ListItemsRequest
	Format string `form:"format" validate:"omitempty,oneof=csv json pdf xlsx"`
	Store  bool   `form:"store"`
}

type ItemListResponse = search.PageResult[domain.Item]

type CreateTemplateRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Platform string `json:"platform" validate:"omitempty,platform"`
	Category string `json:"category" validate:"max=100"`
	Prompt   string `json:"prompt" validate:"required,max=10000"`
}

type UpdateTemplateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Platform *string `json:"platform" validate:"omitempty,platform"`
	Category *string `json:"category" validate:"omitempty,max=100"`
	Prompt   *string `json:"prompt" validate:"omitempty,min=1,max=10000"`
}

type ListTemplatesRequest struct {
	Search   string `form:"search" validate:"max=100"`
	Platform string `form:"platform" validate:"max=20"`
	Category string `form:"category" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type TemplateListResponse = search.PageResult[domain.Template]

type RenderTemplateRequest struct {
	Values map[string]string `json:"values"`
}

// PreviewTemplateRequest renders a prompt that has not been saved.
type PreviewTemplateRequest struct {
	Prompt string            `json:"prompt" validate:"required,max=10000"`
	Values map[string]string `json:"values"`
}

type RenderResponse struct {
	Rendered  string   `json:"rendered"`
	Variables []string `json:"variables"`
	Missing   []string `json:"missing"`
}
