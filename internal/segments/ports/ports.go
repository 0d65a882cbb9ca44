// Package ports defines what the segments module needs from the rest of the
// system. Implementations live in internal/adapters and internal/scheduler.
package ports

import (
	"context"

	"leadscout_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// PopulationReader returns the full live lead population of an organization.
type PopulationReader interface {
	Population(ctx context.Context, organizationID uuid.UUID) ([]domain.Lead, error)
}

// RebuildScheduler defers a membership rebuild. Repeated calls for the same
// organization within the debounce window collapse into one rebuild.
type RebuildScheduler interface {
	ScheduleRebuild(ctx context.Context, organizationID uuid.UUID) error
}
