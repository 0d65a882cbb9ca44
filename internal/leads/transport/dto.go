package transport

import (
	"leadscout_backend/internal/leads/scoring"
	"leadscout_backend/internal/search"
)

type SignalsRequest struct {
	KeywordHits        int     `json:"keywordHits" validate:"min=0"`
	EngagementVelocity float64 `json:"engagementVelocity" validate:"min=0"`
}

type CreateLeadRequest struct {
	Name           string            `json:"name" validate:"required,min=1,max=200"`
	Email          string            `json:"email" validate:"omitempty,email,max=254"`
	Phone          string            `json:"phone" validate:"omitempty,max=32"`
	Handles        map[string]string `json:"handles" validate:"omitempty,dive,keys,platform,endkeys,max=200"`
	Company        string            `json:"company" validate:"max=200"`
	Title          string            `json:"title" validate:"max=200"`
	Industry       string            `json:"industry" validate:"max=100"`
	Location       string            `json:"location" validate:"max=200"`
	Age            *int              `json:"age" validate:"omitempty,min=0,max=150"`
	Platforms      []string          `json:"platforms" validate:"omitempty,max=10,dive,platform"`
	Followers      int               `json:"followers" validate:"min=0"`
	EngagementRate float64           `json:"engagementRate" validate:"min=0,max=100"`
	InfluenceScore float64           `json:"influenceScore" validate:"min=0,max=100"`
	BuyingStage    string            `json:"buyingStage" validate:"required,buyingstage"`
	ActivityLevel  string            `json:"activityLevel" validate:"omitempty,oneof=low medium high"`
	Status         string            `json:"status" validate:"omitempty,oneof=new contacted engaged qualified converted lost"`
	Triggers       []string          `json:"triggers" validate:"omitempty,max=50,dive,max=100"`
	PainPoints     []string          `json:"painPoints" validate:"omitempty,max=50,dive,max=200"`
	Interests      []string          `json:"interests" validate:"omitempty,max=50,dive,max=100"`
	Signals        SignalsRequest    `json:"signals"`
}

// UpdateLeadRequest changes only the fields that are present.
type UpdateLeadRequest struct {
	Name           *string            `json:"name" validate:"omitempty,min=1,max=200"`
	Email          *string            `json:"email" validate:"omitempty,max=254"`
	Phone          *string            `json:"phone" validate:"omitempty,max=32"`
	Handles        *map[string]string `json:"handles" validate:"omitempty"`
	Company        *string            `json:"company" validate:"omitempty,max=200"`
	Title          *string            `json:"title" validate:"omitempty,max=200"`
	Industry       *string            `json:"industry" validate:"omitempty,max=100"`
	Location       *string            `json:"location" validate:"omitempty,max=200"`
	Age            *int               `json:"age" validate:"omitempty,min=0,max=150"`
	ClearAge       bool               `json:"clearAge"`
	Platforms      *[]string          `json:"platforms" validate:"omitempty"`
	Followers      *int               `json:"followers" validate:"omitempty,min=0"`
	EngagementRate *float64           `json:"engagementRate" validate:"omitempty,min=0,max=100"`
	InfluenceScore *float64           `json:"influenceScore" validate:"omitempty,min=0,max=100"`
	BuyingStage    *string            `json:"buyingStage" validate:"omitempty,buyingstage"`
	ActivityLevel  *string            `json:"activityLevel" validate:"omitempty,oneof=low medium high"`
	Status         *string            `json:"status" validate:"omitempty,oneof=new contacted engaged qualified converted lost"`
	Triggers       *[]string          `json:"triggers" validate:"omitempty"`
	PainPoints     *[]string          `json:"painPoints" validate:"omitempty"`
	Interests      *[]string          `json:"interests" validate:"omitempty"`
	Signals        *SignalsRequest    `json:"signals" validate:"omitempty"`
}

type ImportLeadsRequest struct {
	Leads []CreateLeadRequest `json:"leads" validate:"required,min=1,max=5000,dive"`
}

type ImportLeadsResponse struct {
	Imported int `json:"imported"`
}

// ListLeadsRequest filters, sorts and pages the scored lead list. Facet
// values of "all" or "" leave the facet unconstrained.
type ListLeadsRequest struct {
	Search      string `form:"search" validate:"max=100"`
	Status      string `form:"status" validate:"max=20"`
	Platform    string `form:"platform" validate:"max=20"`
	Temperature string `form:"temperature" validate:"max=10"`
	Industry    string `form:"industry" validate:"max=100"`
	BuyingStage string `form:"buyingStage" validate:"max=20"`
	SortBy      string `form:"sortBy" validate:"omitempty,oneof=date name score followers"`
	SortOrder   string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page        int    `form:"page" validate:"omitempty,min=1"`
	PageSize    int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ExportLeadsRequest struct {
	ListLeadsRequest
	Format string `form:"format" validate:"omitempty,oneof=csv json pdf xlsx"`
	Store  bool   `form:"store"`
}

// ScoringDiagnostics reports a weight configuration that does not sum to 100.
// Scores are still computed with the weights as stored.
type ScoringDiagnostics struct {
	Profile      string  `json:"profile,omitempty"`
	WeightSum    float64 `json:"weightSum"`
	WeightsValid bool    `json:"weightsValid"`
	Warning      string  `json:"warning,omitempty"`
}

type LeadListResponse struct {
	search.PageResult[scoring.ScoredLead]
	Scoring ScoringDiagnostics `json:"scoring"`
}

// ScorePreviewRequest scores an unsaved lead. Weights override the stored
// weights for this call only.
type ScorePreviewRequest struct {
	Lead    CreateLeadRequest  `json:"lead"`
	Weights map[string]float64 `json:"weights" validate:"omitempty"`
}

type ScorePreviewResponse struct {
	Score       float64               `json:"score"`
	ScoreMax    float64               `json:"scoreMax"`
	Temperature string                `json:"temperature"`
	Factors     []scoring.FactorScore `json:"factors"`
	Version     string                `json:"version"`
	Scoring     ScoringDiagnostics    `json:"scoring"`
}
