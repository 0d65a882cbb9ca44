package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"leadscout_backend/internal/search/repository"
	"leadscout_backend/internal/search/transport"
	"leadscout_backend/platform/apperr"
)

const defaultLimit = 10

// Searcher runs the ranked cross-entity query.
type Searcher interface {
	GlobalSearch(ctx context.Context, orgID uuid.UUID, query, pattern string, limit int) ([]repository.SearchResult, error)
}

type Service struct {
	repo Searcher
}

func New(repo Searcher) *Service {
	return &Service{repo: repo}
}

func (s *Service) GlobalSearch(ctx context.Context, orgID uuid.UUID, req transport.SearchRequest) (*transport.SearchResponse, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return &transport.SearchResponse{Items: []transport.SearchResultItem{}, Total: 0}, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	results, err := s.repo.GlobalSearch(ctx, orgID, q, likePattern(q), limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "search failed", err).WithOp("search.GlobalSearch")
	}

	total := 0
	if len(results) > 0 {
		// COUNT(*) OVER() is repeated on every row.
		total = int(results[0].Total)
	}

	items := make([]transport.SearchResultItem, len(results))
	for i, r := range results {
		items[i] = transport.SearchResultItem{
			ID:           r.ID.String(),
			Type:         r.Type,
			Title:        r.Title,
			Subtitle:     r.Subtitle,
			Preview:      r.Preview,
			Status:       r.Status,
			Link:         buildFrontendLink(r.Type, r.ID.String()),
			Score:        float64(r.Score),
			MatchedField: r.MatchedField,
			CreatedAt:    r.CreatedAt,
		}
	}

	return &transport.SearchResponse{Items: items, Total: total}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func buildFrontendLink(entityType, id string) string {
	switch entityType {
	case "lead":
		return "/app/leads/" + id
	case "segment":
		return "/app/segments/" + id
	case "content":
		return "/app/content/" + id
	case "template":
		return "/app/content/templates/" + id
	default:
		return "/app"
	}
}
