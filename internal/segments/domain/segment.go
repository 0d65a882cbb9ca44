// Package domain holds audience segments and the pure matching operations
// over them: membership, size estimation and full membership rebuilds.
package domain

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"time"

	"leadscout_backend/internal/criteria"
	leaddomain "leadscout_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Segment is a named audience defined by criteria. Retired segments are
// deactivated, never deleted.
type Segment struct {
	ID              uuid.UUID         `json:"id"`
	OrganizationID  uuid.UUID         `json:"organizationId"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Criteria        criteria.Criteria `json:"criteria"`
	EstimatedSize   SizeEstimate      `json:"estimatedSize"`
	IsActive        bool              `json:"isActive"`
	LastEstimatedAt *time.Time        `json:"lastEstimatedAt"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// SizeEstimate is a member count that may be unknown. Unknown means no
// population was available, which is different from zero matches.
type SizeEstimate struct {
	count int
	known bool
}

// UnknownSize is the estimate made without a population. It encodes as null.
var UnknownSize = SizeEstimate{}

// KnownSize returns an estimate of n members.
func KnownSize(n int) SizeEstimate {
	return SizeEstimate{count: n, known: true}
}

// SizeFromPtr maps a nullable stored count to an estimate.
func SizeFromPtr(n *int) SizeEstimate {
	if n == nil {
		return UnknownSize
	}
	return KnownSize(*n)
}

func (s SizeEstimate) Known() bool { return s.known }

// Count returns the member count and whether it is known.
func (s SizeEstimate) Count() (int, bool) {
	return s.count, s.known
}

// Ptr returns the count as a nullable value for storage and events.
func (s SizeEstimate) Ptr() *int {
	if !s.known {
		return nil
	}
	n := s.count
	return &n
}

func (s SizeEstimate) String() string {
	if !s.known {
		return "unknown"
	}
	return strconv.Itoa(s.count)
}

func (s SizeEstimate) MarshalJSON() ([]byte, error) {
	if !s.known {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(s.count)), nil
}

func (s *SizeEstimate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = UnknownSize
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = KnownSize(n)
	return nil
}

// IsMember reports whether lead satisfies the segment's criteria.
func IsMember(lead leaddomain.Lead, segment Segment) bool {
	return criteria.Matches(lead, segment.Criteria)
}

// EstimateSize counts the members of population. A nil population means no
// population data is available and yields UnknownSize; an empty, non-nil
// population yields a known zero.
func EstimateSize(segment Segment, population []leaddomain.Lead) SizeEstimate {
	if population == nil {
		return UnknownSize
	}
	n := 0
	for _, lead := range population {
		if IsMember(lead, segment) {
			n++
		}
	}
	return KnownSize(n)
}

// RebuildMembership recomputes every segment's members from scratch. Each
// segment gets an entry, and lead ids are sorted ascending.
func RebuildMembership(segments []Segment, population []leaddomain.Lead) map[uuid.UUID][]uuid.UUID {
	out := make(map[uuid.UUID][]uuid.UUID, len(segments))
	for _, segment := range segments {
		out[segment.ID] = Members(segment, population)
	}
	return out
}

// Members returns the ids of segment's members in population, sorted ascending.
func Members(segment Segment, population []leaddomain.Lead) []uuid.UUID {
	ids := make([]uuid.UUID, 0)
	for _, lead := range population {
		if IsMember(lead, segment) {
			ids = append(ids, lead.ID)
		}
	}
	slices.SortFunc(ids, CompareIDs)
	return slices.Compact(ids)
}

// CompareIDs orders uuids by their bytes, which matches their string order.
func CompareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
