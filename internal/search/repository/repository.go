package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type SearchResult struct {
	ID           uuid.UUID
	Type         string
	Title        string
	Subtitle     string
	Preview      string
	Status       string
	MatchedField string
	Score        float32
	CreatedAt    time.Time
	Total        int64
}

// GlobalSearch ranks live leads, segments, content items and templates of one
// organization against query. pattern is the ILIKE fallback for fragments the
// text search does not tokenize, already escaped by the caller.
func (r *Repository) GlobalSearch(ctx context.Context, orgID uuid.UUID, query, pattern string, limit int) ([]SearchResult, error) {
	querySQL := `
		WITH q AS (
			SELECT websearch_to_tsquery('simple', $2) AS ts, $3::text AS pattern
		),
		hits AS (
			SELECT
				l.id,
				'lead' AS type,
				l.name AS title,
				concat_ws(' · ', nullif(l.title, ''), nullif(l.company, '')) AS subtitle,
				l.email AS preview,
				l.status,
				CASE
					WHEN l.name ILIKE q.pattern THEN 'name'
					WHEN l.company ILIKE q.pattern THEN 'company'
					WHEN l.email ILIKE q.pattern THEN 'email'
					ELSE 'profile'
				END AS matched_field,
				ts_rank(
					setweight(to_tsvector('simple', l.name), 'A') ||
					setweight(to_tsvector('simple', l.company), 'B') ||
					setweight(to_tsvector('simple', l.title || ' ' || l.industry || ' ' || l.email), 'C'),
					q.ts
				) + CASE WHEN l.name ILIKE q.pattern THEN 0.5 ELSE 0 END AS score,
				l.created_at
			FROM leads l, q
			WHERE l.organization_id = $1
				AND l.deleted_at IS NULL
				AND (
					to_tsvector('simple', l.name || ' ' || l.company || ' ' || l.title || ' ' || l.industry || ' ' || l.email) @@ q.ts
					OR l.name ILIKE q.pattern
					OR l.company ILIKE q.pattern
					OR l.email ILIKE q.pattern
				)

			UNION ALL

			SELECT
				s.id,
				'segment',
				s.name,
				CASE WHEN s.estimated_size IS NULL THEN 'size unknown' ELSE s.estimated_size::text || ' leads' END,
				s.description,
				CASE WHEN s.is_active THEN 'active' ELSE 'inactive' END,
				CASE WHEN s.name ILIKE q.pattern THEN 'name' ELSE 'description' END,
				ts_rank(
					setweight(to_tsvector('simple', s.name), 'A') ||
					setweight(to_tsvector('simple', s.description), 'C'),
					q.ts
				) + CASE WHEN s.name ILIKE q.pattern THEN 0.5 ELSE 0 END,
				s.created_at
			FROM segments s, q
			WHERE s.organization_id = $1
				AND (
					to_tsvector('simple', s.name || ' ' || s.description) @@ q.ts
					OR s.name ILIKE q.pattern
					OR s.description ILIKE q.pattern
				)

			UNION ALL

			SELECT
				c.id,
				'content',
				c.title,
				c.platform,
				left(c.body, 160),
				c.status,
				CASE WHEN c.title ILIKE q.pattern THEN 'title' ELSE 'body' END,
				ts_rank(
					setweight(to_tsvector('simple', c.title), 'A') ||
					setweight(to_tsvector('simple', c.body), 'C'),
					q.ts
				) + CASE WHEN c.title ILIKE q.pattern THEN 0.5 ELSE 0 END,
				c.created_at
			FROM content_items c, q
			WHERE c.organization_id = $1
				AND (
					to_tsvector('simple', c.title || ' ' || c.body) @@ q.ts
					OR c.title ILIKE q.pattern
					OR c.body ILIKE q.pattern
				)

			UNION ALL

			SELECT
				t.id,
				'template',
				t.name,
				t.platform,
				left(t.prompt, 160),
				'',
				CASE WHEN t.name ILIKE q.pattern THEN 'name' ELSE 'prompt' END,
				ts_rank(
					setweight(to_tsvector('simple', t.name), 'A') ||
					setweight(to_tsvector('simple', t.prompt), 'C'),
					q.ts
				) + CASE WHEN t.name ILIKE q.pattern THEN 0.5 ELSE 0 END,
				t.created_at
			FROM content_templates t, q
			WHERE t.organization_id = $1
				AND (
					to_tsvector('simple', t.name || ' ' || t.prompt) @@ q.ts
					OR t.name ILIKE q.pattern
					OR t.prompt ILIKE q.pattern
				)
		)
		SELECT id, type, title, subtitle, preview, status, matched_field, score::real, created_at, COUNT(*) OVER() AS total
		FROM hits
		ORDER BY score DESC, created_at DESC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, querySQL, orgID, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("global search: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, limit)
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(
			&res.ID, &res.Type, &res.Title, &res.Subtitle, &res.Preview, &res.Status,
			&res.MatchedField, &res.Score, &res.CreatedAt, &res.Total,
		); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return results, nil
}
