package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadscout_backend/internal/leads/scoring"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an organization has never saved settings.
var ErrNotFound = errors.New("scoring settings not found")

// Settings is an organization's scoring configuration.
type Settings struct {
	OrganizationID uuid.UUID
	Profile        string
	ScoreMax       float64
	Weights        scoring.Weights
	Thresholds     scoring.Thresholds
	UpdatedAt      time.Time
}

// Repository persists scoring settings.
type Repository interface {
	Get(ctx context.Context, organizationID uuid.UUID) (Settings, error)
	Upsert(ctx context.Context, s Settings) (Settings, error)
}

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new settings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Get loads the settings of an organization.
func (r *Repo) Get(ctx context.Context, organizationID uuid.UUID) (Settings, error) {
	query := `
		SELECT organization_id, profile, score_max, weights, cold_upper, warm_upper, hot_lower, updated_at
		FROM scoring_settings
		WHERE organization_id = $1`

	s, err := scanSettings(r.pool.QueryRow(ctx, query, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, fmt.Errorf("get scoring settings: %w", err)
	}
	return s, nil
}

// Upsert stores s, replacing any previous settings of the organization.
func (r *Repo) Upsert(ctx context.Context, s Settings) (Settings, error) {
	weights, err := json.Marshal(s.Weights)
	if err != nil {
		return Settings{}, fmt.Errorf("encode weights: %w", err)
	}

	query := `
		INSERT INTO scoring_settings (organization_id, profile, score_max, weights, cold_upper, warm_upper, hot_lower, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (organization_id) DO UPDATE SET
			profile = EXCLUDED.profile,
			score_max = EXCLUDED.score_max,
			weights = EXCLUDED.weights,
			cold_upper = EXCLUDED.cold_upper,
			warm_upper = EXCLUDED.warm_upper,
			hot_lower = EXCLUDED.hot_lower,
			updated_at = now()
		RETURNING organization_id, profile, score_max, weights, cold_upper, warm_upper, hot_lower, updated_at`

	saved, err := scanSettings(r.pool.QueryRow(ctx, query,
		s.OrganizationID, s.Profile, s.ScoreMax, weights,
		s.Thresholds.ColdUpper, s.Thresholds.WarmUpper, s.Thresholds.HotLower,
	))
	if err != nil {
		return Settings{}, fmt.Errorf("upsert scoring settings: %w", err)
	}
	return saved, nil
}

func scanSettings(row pgx.Row) (Settings, error) {
	var s Settings
	var weights []byte
	if err := row.Scan(
		&s.OrganizationID, &s.Profile, &s.ScoreMax, &weights,
		&s.Thresholds.ColdUpper, &s.Thresholds.WarmUpper, &s.Thresholds.HotLower, &s.UpdatedAt,
	); err != nil {
		return Settings{}, err
	}
	if err := json.Unmarshal(weights, &s.Weights); err != nil {
		return Settings{}, fmt.Errorf("decode weights: %w", err)
	}
	return s, nil
}
