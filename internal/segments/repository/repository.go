package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadscout_backend/internal/segments/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a segment does not exist in the organization.
var ErrNotFound = errors.New("segment not found")

// MembershipUpdate replaces one segment's members and stored size.
type MembershipUpdate struct {
	SegmentID     uuid.UUID
	LeadIDs       []uuid.UUID
	EstimatedSize *int
}

// SegmentReader provides read-only access to segments and their members.
type SegmentReader interface {
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (domain.Segment, error)
	List(ctx context.Context, organizationID uuid.UUID) ([]domain.Segment, error)
	ListMembers(ctx context.Context, organizationID, id uuid.UUID) ([]uuid.UUID, error)
	ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SegmentWriter provides segment lifecycle and membership writes.
type SegmentWriter interface {
	Create(ctx context.Context, segment domain.Segment, members []uuid.UUID) (domain.Segment, error)
	Update(ctx context.Context, segment domain.Segment) (domain.Segment, error)
	Save(ctx context.Context, segment domain.Segment, members []uuid.UUID) (domain.Segment, error)
	SetActive(ctx context.Context, organizationID, id uuid.UUID, active bool) (domain.Segment, error)
	ReplaceMembers(ctx context.Context, organizationID uuid.UUID, updates []MembershipUpdate, estimatedAt time.Time) error
}

// Repository is the full segment store.
type Repository interface {
	SegmentReader
	SegmentWriter
}

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new segments repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

const segmentColumns = `id, organization_id, name, description, criteria, estimated_size, is_active, last_estimated_at, created_at, updated_at`

// Create inserts a segment and its members in one transaction.
func (r *Repo) Create(ctx context.Context, segment domain.Segment, members []uuid.UUID) (created domain.Segment, err error) {
	criteriaJSON, err := json.Marshal(segment.Criteria)
	if err != nil {
		return domain.Segment{}, fmt.Errorf("encode criteria: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Segment{}, fmt.Errorf("begin create segment: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err)

	query := `
		INSERT INTO segments (id, organization_id, name, description, criteria, estimated_size, is_active, last_estimated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, $7, now(), now())
		RETURNING ` + segmentColumns

	created, err = scanSegment(tx.QueryRow(ctx, query,
		segment.ID, segment.OrganizationID, segment.Name, segment.Description, criteriaJSON,
		segment.EstimatedSize.Ptr(), segment.LastEstimatedAt,
	))
	if err != nil {
		return domain.Segment{}, fmt.Errorf("create segment: %w", err)
	}
	if err = replaceMembers(ctx, tx, created.ID, members); err != nil {
		return domain.Segment{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Segment{}, fmt.Errorf("commit create segment: %w", err)
	}
	return created, nil
}

func (r *Repo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (domain.Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments WHERE id = $1 AND organization_id = $2`

	segment, err := scanSegment(r.pool.QueryRow(ctx, query, id, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Segment{}, ErrNotFound
	}
	if err != nil {
		return domain.Segment{}, fmt.Errorf("get segment: %w", err)
	}
	return segment, nil
}

// List returns active and inactive segments, oldest first.
func (r *Repo) List(ctx context.Context, organizationID uuid.UUID) ([]domain.Segment, error) {
	query := `SELECT ` + segmentColumns + ` FROM segments WHERE organization_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	segments := make([]domain.Segment, 0)
	for rows.Next() {
		segment, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, segment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segments, nil
}

// Update replaces the definition and estimate of a segment.
func (r *Repo) Update(ctx context.Context, segment domain.Segment) (domain.Segment, error) {
	criteriaJSON, err := json.Marshal(segment.Criteria)
	if err != nil {
		return domain.Segment{}, fmt.Errorf("encode criteria: %w", err)
	}

	query := `
		UPDATE segments SET
			name = $3, description = $4, criteria = $5, estimated_size = $6, last_estimated_at = $7, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + segmentColumns

	updated, err := scanSegment(r.pool.QueryRow(ctx, query,
		segment.ID, segment.OrganizationID, segment.Name, segment.Description, criteriaJSON,
		segment.EstimatedSize.Ptr(), segment.LastEstimatedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Segment{}, ErrNotFound
	}
	if err != nil {
		return domain.Segment{}, fmt.Errorf("update segment: %w", err)
	}
	return updated, nil
}

// Save rewrites the definition, active flag and estimate of a segment
// together with its members in one transaction.
func (r *Repo) Save(ctx context.Context, segment domain.Segment, members []uuid.UUID) (saved domain.Segment, err error) {
	criteriaJSON, err := json.Marshal(segment.Criteria)
	if err != nil {
		return domain.Segment{}, fmt.Errorf("encode criteria: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Segment{}, fmt.Errorf("begin save segment: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err)

	query := `
		UPDATE segments SET
			name = $3, description = $4, criteria = $5, is_active = $6,
			estimated_size = $7, last_estimated_at = $8, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + segmentColumns

	saved, err = scanSegment(tx.QueryRow(ctx, query,
		segment.ID, segment.OrganizationID, segment.Name, segment.Description, criteriaJSON,
		segment.IsActive, segment.EstimatedSize.Ptr(), segment.LastEstimatedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Segment{}, ErrNotFound
	}
	if err != nil {
		return domain.Segment{}, fmt.Errorf("save segment: %w", err)
	}
	if err = replaceMembers(ctx, tx, saved.ID, members); err != nil {
		return domain.Segment{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Segment{}, fmt.Errorf("commit save segment: %w", err)
	}
	return saved, nil
}

func (r *Repo) SetActive(ctx context.Context, organizationID, id uuid.UUID, active bool) (domain.Segment, error) {
	query := `
		UPDATE segments SET is_active = $3, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + segmentColumns

	segment, err := scanSegment(r.pool.QueryRow(ctx, query, id, organizationID, active))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Segment{}, ErrNotFound
	}
	if err != nil {
		return domain.Segment{}, fmt.Errorf("set segment active: %w", err)
	}
	return segment, nil
}

// ReplaceMembers rewrites the members and sizes of the given segments in one
// transaction. Members are loaded with COPY.
func (r *Repo) ReplaceMembers(ctx context.Context, organizationID uuid.UUID, updates []MembershipUpdate, estimatedAt time.Time) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin membership rebuild: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err)

	for _, u := range updates {
		tag, execErr := tx.Exec(ctx, `
			UPDATE segments SET estimated_size = $3, last_estimated_at = $4
			WHERE id = $1 AND organization_id = $2
		`, u.SegmentID, organizationID, u.EstimatedSize, estimatedAt)
		if execErr != nil {
			return fmt.Errorf("update segment size: %w", execErr)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if err = replaceMembers(ctx, tx, u.SegmentID, u.LeadIDs); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit membership rebuild: %w", err)
	}
	return nil
}

// replaceMembers clears the stored members of a segment and loads leadIDs with COPY.
func replaceMembers(ctx context.Context, tx pgx.Tx, segmentID uuid.UUID, leadIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM segment_members WHERE segment_id = $1`, segmentID); err != nil {
		return fmt.Errorf("clear segment members: %w", err)
	}
	if len(leadIDs) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(leadIDs))
	for _, leadID := range leadIDs {
		rows = append(rows, []any{segmentID, leadID})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"segment_members"}, []string{"segment_id", "lead_id"}, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy segment members: %w", err)
	}
	return nil
}

func rollbackOnError(ctx context.Context, tx pgx.Tx, err *error) {
	if *err != nil {
		_ = tx.Rollback(ctx)
	}
}

// ListMembers returns the stored member ids of a segment, ascending.
func (r *Repo) ListMembers(ctx context.Context, organizationID, id uuid.UUID) ([]uuid.UUID, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM segments WHERE id = $1 AND organization_id = $2)`, id, organizationID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check segment: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := r.pool.Query(ctx, `
		SELECT m.lead_id
		FROM segment_members m
		JOIN leads l ON l.id = m.lead_id AND l.deleted_at IS NULL
		WHERE m.segment_id = $1
		ORDER BY m.lead_id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list segment members: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var leadID uuid.UUID
		if err := rows.Scan(&leadID); err != nil {
			return nil, fmt.Errorf("scan segment member: %w", err)
		}
		ids = append(ids, leadID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segment members: %w", err)
	}
	return ids, nil
}

// ListOrganizationIDs returns every organization with at least one active segment.
func (r *Repo) ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT organization_id FROM segments WHERE is_active = true ORDER BY organization_id`)
	if err != nil {
		return nil, fmt.Errorf("list segment organizations: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan organization id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanSegment(row pgx.Row) (domain.Segment, error) {
	var (
		segment      domain.Segment
		criteriaJSON []byte
		size         *int
	)
	err := row.Scan(
		&segment.ID, &segment.OrganizationID, &segment.Name, &segment.Description, &criteriaJSON,
		&size, &segment.IsActive, &segment.LastEstimatedAt, &segment.CreatedAt, &segment.UpdatedAt,
	)
	if err != nil {
		return domain.Segment{}, err
	}
	if len(criteriaJSON) > 0 {
		if err := json.Unmarshal(criteriaJSON, &segment.Criteria); err != nil {
			return domain.Segment{}, fmt.Errorf("decode criteria: %w", err)
		}
	}
	segment.EstimatedSize = domain.SizeFromPtr(size)
	return segment, nil
}
