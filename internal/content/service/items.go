// Package service provides content item and template operations.
package service

import (
	"cmp"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"leadscout_backend/internal/content/domain"
	"leadscout_backend/internal/content/repository"
	"leadscout_backend/internal/content/transport"
	"leadscout_backend/internal/exports"
	leaddomain "leadscout_backend/internal/leads/domain"
	"leadscout_backend/internal/search"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/sanitize"

	"github.com/google/uuid"
)

const errItemNotFound = "content item not found"

// ItemService manages content items.
type ItemService struct {
	repo     repository.ItemRepository
	exporter *exports.Service
	log      *logger.Logger
	index    *search.Index[domain.Item]
	now      func() time.Time
}

// NewItemService creates a content item service.
func NewItemService(repo repository.ItemRepository, exporter *exports.Service, log *logger.Logger) *ItemService {
	return &ItemService{
		repo:     repo,
		exporter: exporter,
		log:      log,
		index:    newItemIndex(),
		now:      time.Now,
	}
}

func (s *ItemService) Create(ctx context.Context, organizationID uuid.UUID, req transport.CreateItemRequest) (domain.Item, error) {
	platform, ok := leaddomain.ParsePlatform(req.Platform)
	if !ok {
		return domain.Item{}, apperr.InvalidFields("invalid content item", []apperr.FieldError{{Field: "platform", Message: "unknown platform"}})
	}
	status := domain.StatusDraft
	if req.Status != "" {
		if status, ok = domain.ParseItemStatus(req.Status); !ok {
			return domain.Item{}, apperr.InvalidFields("invalid content item", []apperr.FieldError{{Field: "status", Message: "unknown status"}})
		}
	}

	item, err := s.repo.CreateItem(ctx, domain.Item{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Title:          sanitize.Line(req.Title),
		Body:           req.Body,
		Platform:       platform,
		Category:       sanitize.Line(req.Category),
		Status:         status,
		QualityScore:   req.QualityScore,
		Engagement:     req.Engagement,
		ScheduledAt:    req.ScheduledAt,
	})
	if err != nil {
		return domain.Item{}, err
	}

	s.log.Info("content item created", "id", item.ID, "organizationId", organizationID)
	return item, nil
}

func (s *ItemService) GetByID(ctx context.Context, organizationID, id uuid.UUID) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, organizationID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Item{}, apperr.NotFound(errItemNotFound)
	}
	return item, err
}

// Update edits an item. Archived items are read-only.
func (s *ItemService) Update(ctx context.Context, organizationID, id uuid.UUID, req transport.UpdateItemRequest) (domain.Item, error) {
	item, err := s.GetByID(ctx, organizationID, id)
	if err != nil {
		return domain.Item{}, err
	}
	if item.Archived() {
		return domain.Item{}, apperr.Conflict("archived content items cannot be edited")
	}

	if req.Title != nil {
		item.Title = sanitize.Line(*req.Title)
	}
	if req.Body != nil {
		item.Body = *req.Body
	}
	if req.Platform != nil {
		platform, ok := leaddomain.ParsePlatform(*req.Platform)
		if !ok {
			return domain.Item{}, apperr.InvalidFields("invalid content item", []apperr.FieldError{{Field: "platform", Message: "unknown platform"}})
		}
		item.Platform = platform
	}
	if req.Category != nil {
		item.Category = sanitize.Line(*req.Category)
	}
	if req.Status != nil {
		status, ok := domain.ParseItemStatus(*req.Status)
		if !ok {
			return domain.Item{}, apperr.InvalidFields("invalid content item", []apperr.FieldError{{Field: "status", Message: "unknown status"}})
		}
		item.Status = status
	}
	if req.QualityScore != nil {
		item.QualityScore = *req.QualityScore
	}
	if req.Engagement != nil {
		item.Engagement = *req.Engagement
	}
	if req.ScheduledAt != nil {
		item.ScheduledAt = req.ScheduledAt
	}

	updated, err := s.repo.UpdateItem(ctx, item)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Item{}, apperr.NotFound(errItemNotFound)
	}
	if err != nil {
		return domain.Item{}, err
	}

	s.log.Info("content item updated", "id", id, "organizationId", organizationID)
	return updated, nil
}

// Archive soft-retires an item. It stays listable under status=archived.
func (s *ItemService) Archive(ctx context.Context, organizationID, id uuid.UUID) (domain.Item, error) {
	item, err := s.repo.ArchiveItem(ctx, organizationID, id, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Item{}, apperr.NotFound(errItemNotFound)
	}
	if err != nil {
		return domain.Item{}, err
	}

	s.log.Info("content item archived", "id", id, "organizationId", organizationID)
	return item, nil
}

func (s *ItemService) List(ctx context.Context, organizationID uuid.UUID, req transport.ListItemsRequest) (transport.ItemListResponse, error) {
	query := itemQuery(req)
	if err := s.index.Validate(query); err != nil {
		return transport.ItemListResponse{}, err
	}
	items, err := s.repo.ListItems(ctx, organizationID)
	if err != nil {
		return transport.ItemListResponse{}, err
	}
	return s.index.Page(items, query), nil
}

// Export renders the filtered, sorted item list. Paging is ignored.
func (s *ItemService) Export(ctx context.Context, organizationID uuid.UUID, req transport.ExportItemsRequest) (exports.Artifact, error) {
	format, err := exports.ParseFormat(req.Format)
	if err != nil {
		return exports.Artifact{}, err
	}
	query := itemQuery(req.ListItemsRequest)
	if err := s.index.Validate(query); err != nil {
		return exports.Artifact{}, err
	}
	items, err := s.repo.ListItems(ctx, organizationID)
	if err != nil {
		return exports.Artifact{}, err
	}

	table := exports.Collect("content", s.index.Apply(items, query), itemColumns)
	artifact, err := s.exporter.Export(ctx, exports.Request{OrganizationID: organizationID, Format: format, Store: req.Store}, table)
	if err != nil {
		return exports.Artifact{}, err
	}

	s.log.Info("content exported", "organizationId", organizationID, "format", format, "rows", artifact.Rows)
	return artifact, nil
}

func itemQuery(req transport.ListItemsRequest) search.Query {
	return search.Query{
		Search: req.Search,
		Filters: map[string]string{
			"status":   req.Status,
			"platform": req.Platform,
			"category": req.Category,
		},
		SortBy:    req.SortBy,
		SortOrder: search.SortOrder(req.SortOrder),
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
}

func newItemIndex() *search.Index[domain.Item] {
	return search.NewIndex[domain.Item]().
		Text(
			func(i domain.Item) string { return i.Title },
			func(i domain.Item) string { return i.Body },
		).
		Facet("status", func(i domain.Item) []string { return []string{string(i.Status)} }).
		Facet("platform", func(i domain.Item) []string { return []string{string(i.Platform)} }).
		Facet("category", func(i domain.Item) []string { return []string{i.Category} }).
		Sort("date", func(a, b domain.Item) int { return a.CreatedAt.Compare(b.CreatedAt) }).
		Sort("title", func(a, b domain.Item) int { return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) }).
		Sort("quality", func(a, b domain.Item) int { return cmp.Compare(a.QualityScore, b.QualityScore) }).
		Sort("engagement", func(a, b domain.Item) int { return cmp.Compare(a.Engagement, b.Engagement) }).
		DefaultSort("date", search.SortDesc)
}

var itemColumns = []exports.Column[domain.Item]{
	{Header: "Title", Value: func(i domain.Item) string { return i.Title }},
	{Header: "Platform", Value: func(i domain.Item) string { return string(i.Platform) }},
	{Header: "Category", Value: func(i domain.Item) string { return i.Category }},
	{Header: "Status", Value: func(i domain.Item) string { return string(i.Status) }},
	{Header: "Quality", Value: func(i domain.Item) string { return strconv.FormatFloat(i.QualityScore, 'f', -1, 64) }},
	{Header: "Engagement", Value: func(i domain.Item) string { return strconv.FormatFloat(i.Engagement, 'f', -1, 64) }},
	{Header: "Scheduled", Value: func(i domain.Item) string { return formatTime(i.ScheduledAt) }},
	{Header: "Created", Value: func(i domain.Item) string { return i.CreatedAt.UTC().Format(time.RFC3339) }},
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
