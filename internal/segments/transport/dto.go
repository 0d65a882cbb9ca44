package transport

import (
	"leadscout_backend/internal/criteria"
	"leadscout_backend/internal/search"
	"leadscout_backend/internal/segments/domain"

	"github.com/google/uuid"
)

type CreateSegmentRequest struct {
	Name        string            `json:"name" validate:"required,min=1,max=200"`
	Description string            `json:"description" validate:"max=2000"`
	Criteria    criteria.Criteria `json:"criteria"`
}

// UpdateSegmentRequest changes only the fields that are present. Changing the
// criteria re-estimates the size and rebuilds the members.
type UpdateSegmentRequest struct {
	Name        *string            `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=2000"`
	Criteria    *criteria.Criteria `json:"criteria"`
}

type PreviewSegmentRequest struct {
	Criteria criteria.Criteria `json:"criteria"`
}

type PreviewSegmentResponse struct {
	EstimatedSize  domain.SizeEstimate `json:"estimatedSize"`
	PopulationSize int                 `json:"populationSize"`
}

// ListSegmentsRequest filters segments. Active is "true", "false", "all" or empty.
type ListSegmentsRequest struct {
	Search    string `form:"search" validate:"max=100"`
	Active    string `form:"active" validate:"omitempty,oneof=true false all"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=date name size"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ListMembersRequest struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type SegmentListResponse = search.PageResult[domain.Segment]

type MemberListResponse = search.PageResult[uuid.UUID]

type RebuildResponse struct {
	Scheduled bool `json:"scheduled"`
	Segments  int  `json:"segments"`
	Members   int  `json:"members"`
}
