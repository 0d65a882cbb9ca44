package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadscout_backend/internal/content/domain"
	leaddomain "leadscout_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when an item or template does not exist in the organization.
	ErrNotFound = errors.New("content not found")
	// ErrDuplicateName is returned when a template name is already taken in the organization.
	ErrDuplicateName = errors.New("template name already exists")
)

const pgUniqueViolation = "23505"

// ItemRepository stores content items.
type ItemRepository interface {
	CreateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	GetItem(ctx context.Context, organizationID, id uuid.UUID) (domain.Item, error)
	ListItems(ctx context.Context, organizationID uuid.UUID) ([]domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error)
	ArchiveItem(ctx context.Context, organizationID, id uuid.UUID, at time.Time) (domain.Item, error)
}

// TemplateRepository stores content templates.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, tpl domain.Template) (domain.Template, error)
	GetTemplate(ctx context.Context, organizationID, id uuid.UUID) (domain.Template, error)
	ListTemplates(ctx context.Context, organizationID uuid.UUID) ([]domain.Template, error)
	UpdateTemplate(ctx context.Context, tpl domain.Template) (domain.Template, error)
	DeleteTemplate(ctx context.Context, organizationID, id uuid.UUID) error
}

// Repository is the full content store.
type Repository interface {
	ItemRepository
	TemplateRepository
}

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new content repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

const itemColumns = `id, organization_id, title, body, platform, category, status, quality_score, engagement, scheduled_at, archived_at, created_at, updated_at`

const templateColumns = `id, organization_id, name, platform, category, prompt, created_at, updated_at`

func (r *Repo) CreateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	query := `
		INSERT INTO content_items (id, organization_id, title, body, platform, category, status, quality_score, engagement, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING ` + itemColumns

	created, err := scanItem(r.pool.QueryRow(ctx, query,
		item.ID, item.OrganizationID, item.Title, item.Body, string(item.Platform), item.Category,
		string(item.Status), item.QualityScore, item.Engagement, item.ScheduledAt,
	))
	if err != nil {
		return domain.Item{}, fmt.Errorf("create content item: %w", err)
	}
	return created, nil
}

func (r *Repo) GetItem(ctx context.Context, organizationID, id uuid.UUID) (domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM content_items WHERE id = $1 AND organization_id = $2`

	item, err := scanItem(r.pool.QueryRow(ctx, query, id, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Item{}, ErrNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("get content item: %w", err)
	}
	return item, nil
}

// ListItems returns every item of the organization, archived ones included.
func (r *Repo) ListItems(ctx context.Context, organizationID uuid.UUID) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM content_items WHERE organization_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content items: %w", err)
	}
	return items, nil
}

// UpdateItem replaces the editable fields. Archived items cannot be edited.
func (r *Repo) UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	query := `
		UPDATE content_items SET
			title = $3, body = $4, platform = $5, category = $6, status = $7,
			quality_score = $8, engagement = $9, scheduled_at = $10, updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND archived_at IS NULL
		RETURNING ` + itemColumns

	updated, err := scanItem(r.pool.QueryRow(ctx, query,
		item.ID, item.OrganizationID, item.Title, item.Body, string(item.Platform), item.Category,
		string(item.Status), item.QualityScore, item.Engagement, item.ScheduledAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Item{}, ErrNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("update content item: %w", err)
	}
	return updated, nil
}

// ArchiveItem soft-retires an item. Archiving twice keeps the first timestamp.
func (r *Repo) ArchiveItem(ctx context.Context, organizationID, id uuid.UUID, at time.Time) (domain.Item, error) {
	query := `
		UPDATE content_items SET
			status = 'archived', archived_at = COALESCE(archived_at, $3), updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query, id, organizationID, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Item{}, ErrNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("archive content item: %w", err)
	}
	return item, nil
}

func (r *Repo) CreateTemplate(ctx context.Context, tpl domain.Template) (domain.Template, error) {
	query := `
		INSERT INTO content_templates (id, organization_id, name, platform, category, prompt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING ` + templateColumns

	created, err := scanTemplate(r.pool.QueryRow(ctx, query, tpl.ID, tpl.OrganizationID, tpl.Name, tpl.Platform, tpl.Category, tpl.Prompt))
	if isUniqueViolation(err) {
		return domain.Template{}, ErrDuplicateName
	}
	if err != nil {
		return domain.Template{}, fmt.Errorf("create content template: %w", err)
	}
	return created, nil
}

func (r *Repo) GetTemplate(ctx context.Context, organizationID, id uuid.UUID) (domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM content_templates WHERE id = $1 AND organization_id = $2`

	tpl, err := scanTemplate(r.pool.QueryRow(ctx, query, id, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Template{}, ErrNotFound
	}
	if err != nil {
		return domain.Template{}, fmt.Errorf("get content template: %w", err)
	}
	return tpl, nil
}

func (r *Repo) ListTemplates(ctx context.Context, organizationID uuid.UUID) ([]domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM content_templates WHERE organization_id = $1 ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list content templates: %w", err)
	}
	defer rows.Close()

	templates := make([]domain.Template, 0)
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content template: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content templates: %w", err)
	}
	return templates, nil
}

func (r *Repo) UpdateTemplate(ctx context.Context, tpl domain.Template) (domain.Template, error) {
	query := `
		UPDATE content_templates SET name = $3, platform = $4, category = $5, prompt = $6, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + templateColumns

	updated, err := scanTemplate(r.pool.QueryRow(ctx, query, tpl.ID, tpl.OrganizationID, tpl.Name, tpl.Platform, tpl.Category, tpl.Prompt))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.Template{}, ErrNotFound
	case isUniqueViolation(err):
		return domain.Template{}, ErrDuplicateName
	case err != nil:
		return domain.Template{}, fmt.Errorf("update content template: %w", err)
	}
	return updated, nil
}

func (r *Repo) DeleteTemplate(ctx context.Context, organizationID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM content_templates WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("delete content template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (domain.Item, error) {
	var (
		item             domain.Item
		platform, status string
	)
	err := row.Scan(
		&item.ID, &item.OrganizationID, &item.Title, &item.Body, &platform, &item.Category, &status,
		&item.QualityScore, &item.Engagement, &item.ScheduledAt, &item.ArchivedAt, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return domain.Item{}, err
	}
	item.Platform = leaddomain.Platform(platform)
	item.Status = domain.ItemStatus(status)
	return item, nil
}

func scanTemplate(row pgx.Row) (domain.Template, error) {
	var tpl domain.Template
	err := row.Scan(&tpl.ID, &tpl.OrganizationID, &tpl.Name, &tpl.Platform, &tpl.Category, &tpl.Prompt, &tpl.CreatedAt, &tpl.UpdatedAt)
	return tpl, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
