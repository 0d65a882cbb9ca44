package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leadscout_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lead does not exist, belongs to another
// organization, or was deleted.
var ErrNotFound = errors.New("lead not found")

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (domain.Lead, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.Lead, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	Update(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
	Import(ctx context.Context, leads []domain.Lead) (int64, error)
}

// Repository is the full lead store.
type Repository interface {
	LeadReader
	LeadWriter
}

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

const leadColumns = `id, organization_id, name, email, phone, handles, company, title, industry, location, age,
	platforms, followers, engagement_rate, influence_score, buying_stage, activity_level, status,
	triggers, pain_points, interests, keyword_hits, engagement_velocity, created_at, updated_at`

var copyColumns = []string{
	"id", "organization_id", "name", "email", "phone", "handles", "company", "title", "industry", "location", "age",
	"platforms", "followers", "engagement_rate", "influence_score", "buying_stage", "activity_level", "status",
	"triggers", "pain_points", "interests", "keyword_hits", "engagement_velocity", "created_at", "updated_at",
}

func (r *Repo) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	args, err := leadArgs(lead)
	if err != nil {
		return domain.Lead{}, err
	}

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, now(), now())
		RETURNING ` + leadColumns

	created, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return created, nil
}

func (r *Repo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// ListByOrganization returns every live lead of the organization, oldest first.
// Scoring baselines and segment sizes are computed over this full population.
func (r *Repo) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE organization_id = $1 AND deleted_at IS NULL ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

// Update replaces every mutable column of lead.
func (r *Repo) Update(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	args, err := leadArgs(lead)
	if err != nil {
		return domain.Lead{}, err
	}

	query := `
		UPDATE leads SET
			name = $3, email = $4, phone = $5, handles = $6, company = $7, title = $8, industry = $9,
			location = $10, age = $11, platforms = $12, followers = $13, engagement_rate = $14,
			influence_score = $15, buying_stage = $16, activity_level = $17, status = $18, triggers = $19,
			pain_points = $20, interests = $21, keyword_hits = $22, engagement_velocity = $23,
			updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		RETURNING ` + leadColumns

	updated, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return updated, nil
}

// Delete soft-deletes a lead.
func (r *Repo) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, "UPDATE leads SET deleted_at = now(), updated_at = now() WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL", id, organizationID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Import bulk-loads leads with COPY. Timestamps must already be set.
func (r *Repo) Import(ctx context.Context, leads []domain.Lead) (int64, error) {
	rows := make([][]any, 0, len(leads))
	for _, lead := range leads {
		args, err := leadArgs(lead)
		if err != nil {
			return 0, err
		}
		rows = append(rows, append(args, lead.CreatedAt, lead.UpdatedAt))
	}

	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"leads"}, copyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("import leads: %w", err)
	}
	return n, nil
}

func leadArgs(lead domain.Lead) ([]any, error) {
	handles, err := json.Marshal(lead.Handles)
	if err != nil {
		return nil, fmt.Errorf("encode handles: %w", err)
	}
	if lead.Handles == nil {
		handles = []byte("{}")
	}
	return []any{
		lead.ID, lead.OrganizationID, lead.Name, lead.Email, lead.Phone, handles,
		lead.Company, lead.Title, lead.Industry, lead.Location, lead.Age,
		lead.PlatformNames(), lead.Followers, lead.EngagementRate, lead.InfluenceScore,
		string(lead.BuyingStage), string(lead.ActivityLevel), string(lead.Status),
		nonNil(lead.Triggers), nonNil(lead.PainPoints), nonNil(lead.Interests),
		lead.Signals.KeywordHits, lead.Signals.EngagementVelocity,
	}, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead                               domain.Lead
		handles                            []byte
		platforms                          []string
		buyingStage, activityLevel, status string
	)
	err := row.Scan(
		&lead.ID, &lead.OrganizationID, &lead.Name, &lead.Email, &lead.Phone, &handles,
		&lead.Company, &lead.Title, &lead.Industry, &lead.Location, &lead.Age,
		&platforms, &lead.Followers, &lead.EngagementRate, &lead.InfluenceScore,
		&buyingStage, &activityLevel, &status,
		&lead.Triggers, &lead.PainPoints, &lead.Interests,
		&lead.Signals.KeywordHits, &lead.Signals.EngagementVelocity,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}

	if len(handles) > 0 {
		if err := json.Unmarshal(handles, &lead.Handles); err != nil {
			return domain.Lead{}, fmt.Errorf("decode handles: %w", err)
		}
	}
	lead.Platforms = make([]domain.Platform, 0, len(platforms))
	for _, p := range platforms {
		lead.Platforms = append(lead.Platforms, domain.Platform(p))
	}
	lead.BuyingStage = domain.BuyingStage(buyingStage)
	lead.ActivityLevel = domain.ActivityLevel(activityLevel)
	lead.Status = domain.Status(status)
	return lead, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
