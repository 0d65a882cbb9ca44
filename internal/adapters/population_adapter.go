package adapters

import (
	"context"

	leaddomain "leadscout_backend/internal/leads/domain"
	segmentports "leadscout_backend/internal/segments/ports"

	"github.com/google/uuid"
)

// LeadPopulationLister is the narrow interface for listing an organization's live leads.
type LeadPopulationLister interface {
	Population(ctx context.Context, organizationID uuid.UUID) ([]leaddomain.Lead, error)
}

// SegmentPopulationReader implements segments/ports.PopulationReader using
// the leads service.
type SegmentPopulationReader struct {
	leads LeadPopulationLister
}

// NewSegmentPopulationReader creates a new population adapter.
func NewSegmentPopulationReader(leads LeadPopulationLister) *SegmentPopulationReader {
	return &SegmentPopulationReader{leads: leads}
}

// Population returns the leads segment criteria are evaluated against.
func (a *SegmentPopulationReader) Population(ctx context.Context, organizationID uuid.UUID) ([]leaddomain.Lead, error) {
	return a.leads.Population(ctx, organizationID)
}

// Compile-time check.
var _ segmentports.PopulationReader = (*SegmentPopulationReader)(nil)
