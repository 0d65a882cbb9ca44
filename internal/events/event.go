// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadscout_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadChange names what happened to the leads in a LeadsChanged event.
type LeadChange string

const (
	LeadChangeCreated LeadChange = "created"
	LeadChangeUpdated LeadChange = "updated"
	LeadChangeDeleted LeadChange = "deleted"
	LeadChangeImport  LeadChange = "imported"
)

// LeadsChanged is published whenever the lead population of an organization
// changes. Segment sizes and memberships derived from it are stale afterwards.
type LeadsChanged struct {
	BaseEvent
	OrganizationID uuid.UUID   `json:"organizationId"`
	LeadIDs        []uuid.UUID `json:"leadIds"`
	Change         LeadChange  `json:"change"`
}

func (e LeadsChanged) EventName() string { return "leads.population.changed" }

// =============================================================================
// Scoring Domain Events
// =============================================================================

// ScoringSettingsChanged is published when an organization's weights,
// thresholds or profile change. Cached scores are stale afterwards.
type ScoringSettingsChanged struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	Profile        string    `json:"profile,omitempty"`
	WeightsValid   bool      `json:"weightsValid"`
}

func (e ScoringSettingsChanged) EventName() string { return "scoring.settings.changed" }

// =============================================================================
// Segments Domain Events
// =============================================================================

// SegmentChange names what happened to a segment.
type SegmentChange string

const (
	SegmentChangeCreated     SegmentChange = "created"
	SegmentChangeUpdated     SegmentChange = "updated"
	SegmentChangeDeactivated SegmentChange = "deactivated"
	SegmentChangeReactivated SegmentChange = "reactivated"
	SegmentChangeRebuilt     SegmentChange = "rebuilt"
)

// SegmentChanged is published after a segment's definition or membership changes.
type SegmentChanged struct {
	BaseEvent
	OrganizationID uuid.UUID     `json:"organizationId"`
	SegmentID      uuid.UUID     `json:"segmentId"`
	Change         SegmentChange `json:"change"`
	EstimatedSize  *int          `json:"estimatedSize"`
}

func (e SegmentChanged) EventName() string { return "segments.segment.changed" }
