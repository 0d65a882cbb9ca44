// Package service provides the segment lifecycle: definition, estimation,
// membership rebuilds and the reaction to lead population changes.
package service

import (
	"cmp"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"leadscout_backend/internal/criteria"
	"leadscout_backend/internal/events"
	leaddomain "leadscout_backend/internal/leads/domain"
	"leadscout_backend/internal/search"
	"leadscout_backend/internal/segments/domain"
	"leadscout_backend/internal/segments/ports"
	"leadscout_backend/internal/segments/repository"
	"leadscout_backend/internal/segments/transport"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/cache"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/sanitize"

	"github.com/google/uuid"
)

const errSegmentNotFound = "segment not found"

// Service handles segment business operations.
type Service struct {
	repo       repository.Repository
	population ports.PopulationReader
	members    *cache.JSONCache
	scheduler  ports.RebuildScheduler
	bus        events.Bus
	log        *logger.Logger
	index      *search.Index[domain.Segment]
	memberIdx  *search.Index[uuid.UUID]
	now        func() time.Time
}

// New creates a segments service. members and scheduler may be nil; without
// a scheduler, population changes rebuild memberships inline.
func New(repo repository.Repository, population ports.PopulationReader, members *cache.JSONCache, scheduler ports.RebuildScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		population: population,
		members:    members,
		scheduler:  scheduler,
		bus:        bus,
		log:        log,
		index:      newIndex(),
		memberIdx:  search.NewIndex[uuid.UUID](),
		now:        time.Now,
	}
}

// SetScheduler attaches the deferred rebuild scheduler.
func (s *Service) SetScheduler(scheduler ports.RebuildScheduler) {
	s.scheduler = scheduler
}

// Create defines a segment and computes its members.
func (s *Service) Create(ctx context.Context, organizationID uuid.UUID, req transport.CreateSegmentRequest) (domain.Segment, error) {
	c, err := criteria.New(req.Criteria)
	if err != nil {
		return domain.Segment{}, err
	}
	population, err := s.loadPopulation(ctx, organizationID)
	if err != nil {
		return domain.Segment{}, err
	}

	now := s.now().UTC()
	segment := domain.Segment{
		ID:              uuid.New(),
		OrganizationID:  organizationID,
		Name:            sanitize.Line(req.Name),
		Description:     sanitize.Line(req.Description),
		Criteria:        c,
		IsActive:        true,
		LastEstimatedAt: &now,
	}
	segment.EstimatedSize = domain.EstimateSize(segment, population)

	created, err := s.repo.Create(ctx, segment, domain.Members(segment, population))
	if err != nil {
		return domain.Segment{}, err
	}

	s.log.Info("segment created", "id", created.ID, "organizationId", organizationID, "estimatedSize", created.EstimatedSize.String())
	s.publish(ctx, created, events.SegmentChangeCreated)
	return created, nil
}

// Update edits a segment. New criteria re-estimate the size.
func (s *Service) Update(ctx context.Context, organizationID, id uuid.UUID, req transport.UpdateSegmentRequest) (domain.Segment, error) {
	segment, err := s.get(ctx, organizationID, id)
	if err != nil {
		return domain.Segment{}, err
	}

	if req.Name != nil {
		segment.Name = sanitize.Line(*req.Name)
	}
	if req.Description != nil {
		segment.Description = sanitize.Line(*req.Description)
	}

	var population []leaddomain.Lead
	if req.Criteria != nil {
		c, err := criteria.New(*req.Criteria)
		if err != nil {
			return domain.Segment{}, err
		}
		if population, err = s.loadPopulation(ctx, organizationID); err != nil {
			return domain.Segment{}, err
		}
		now := s.now().UTC()
		segment.Criteria = c
		segment.EstimatedSize = domain.EstimateSize(segment, population)
		segment.LastEstimatedAt = &now
	}

	var updated domain.Segment
	if req.Criteria != nil {
		updated, err = s.repo.Save(ctx, segment, domain.Members(segment, population))
	} else {
		updated, err = s.repo.Update(ctx, segment)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Segment{}, apperr.NotFound(errSegmentNotFound)
	}
	if err != nil {
		return domain.Segment{}, err
	}
	if req.Criteria != nil {
		s.dropMembers(ctx, updated)
	}

	s.log.Info("segment updated", "id", id, "organizationId", organizationID, "estimatedSize", updated.EstimatedSize.String())
	s.publish(ctx, updated, events.SegmentChangeUpdated)
	return updated, nil
}

// Deactivate retires a segment. Its definition and members are kept.
func (s *Service) Deactivate(ctx context.Context, organizationID, id uuid.UUID) (domain.Segment, error) {
	segment, err := s.repo.SetActive(ctx, organizationID, id, false)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Segment{}, apperr.NotFound(errSegmentNotFound)
	}
	if err != nil {
		return domain.Segment{}, err
	}

	s.log.Info("segment deactivated", "id", id, "organizationId", organizationID)
	s.publish(ctx, segment, events.SegmentChangeDeactivated)
	return segment, nil
}

// Reactivate restores a retired segment and refreshes its members, since the
// population may have changed while it was inactive.
func (s *Service) Reactivate(ctx context.Context, organizationID, id uuid.UUID) (domain.Segment, error) {
	segment, err := s.get(ctx, organizationID, id)
	if err != nil {
		return domain.Segment{}, err
	}
	population, err := s.loadPopulation(ctx, organizationID)
	if err != nil {
		return domain.Segment{}, err
	}

	now := s.now().UTC()
	segment.IsActive = true
	segment.EstimatedSize = domain.EstimateSize(segment, population)
	segment.LastEstimatedAt = &now

	segment, err = s.repo.Save(ctx, segment, domain.Members(segment, population))
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Segment{}, apperr.NotFound(errSegmentNotFound)
	}
	if err != nil {
		return domain.Segment{}, err
	}
	s.dropMembers(ctx, segment)

	s.log.Info("segment reactivated", "id", id, "organizationId", organizationID, "estimatedSize", segment.EstimatedSize.String())
	s.publish(ctx, segment, events.SegmentChangeReactivated)
	return segment, nil
}

// GetByID returns one segment.
func (s *Service) GetByID(ctx context.Context, organizationID, id uuid.UUID) (domain.Segment, error) {
	return s.get(ctx, organizationID, id)
}

// List returns a page of segments.
func (s *Service) List(ctx context.Context, organizationID uuid.UUID, req transport.ListSegmentsRequest) (transport.SegmentListResponse, error) {
	query := search.Query{
		Search:    req.Search,
		Filters:   map[string]string{"active": req.Active},
		SortBy:    req.SortBy,
		SortOrder: search.SortOrder(req.SortOrder),
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if err := s.index.Validate(query); err != nil {
		return transport.SegmentListResponse{}, err
	}

	segments, err := s.repo.List(ctx, organizationID)
	if err != nil {
		return transport.SegmentListResponse{}, err
	}
	return s.index.Page(segments, query), nil
}

// Members returns a page of member lead ids, ascending.
func (s *Service) Members(ctx context.Context, organizationID, id uuid.UUID, req transport.ListMembersRequest) (transport.MemberListResponse, error) {
	key := memberKey(organizationID, id)

	var ids []uuid.UUID
	if err := s.members.Get(ctx, key, &ids); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("segment members cache read failed", "segmentId", id, "error", err)
		}
		ids, err = s.repo.ListMembers(ctx, organizationID, id)
		if errors.Is(err, repository.ErrNotFound) {
			return transport.MemberListResponse{}, apperr.NotFound(errSegmentNotFound)
		}
		if err != nil {
			return transport.MemberListResponse{}, err
		}
		if err := s.members.Set(ctx, key, ids); err != nil {
			s.log.Warn("segment members cache write failed", "segmentId", id, "error", err)
		}
	}

	return s.memberIdx.Page(ids, search.Query{Page: req.Page, PageSize: req.PageSize}), nil
}

// Preview estimates the size of unsaved criteria.
func (s *Service) Preview(ctx context.Context, organizationID uuid.UUID, req transport.PreviewSegmentRequest) (transport.PreviewSegmentResponse, error) {
	c, err := criteria.New(req.Criteria)
	if err != nil {
		return transport.PreviewSegmentResponse{}, err
	}
	population, err := s.loadPopulation(ctx, organizationID)
	if err != nil {
		return transport.PreviewSegmentResponse{}, err
	}

	return transport.PreviewSegmentResponse{
		EstimatedSize:  domain.EstimateSize(domain.Segment{Criteria: c}, population),
		PopulationSize: len(population),
	}, nil
}

// RequestRebuild schedules a rebuild, or runs it inline without a scheduler.
func (s *Service) RequestRebuild(ctx context.Context, organizationID uuid.UUID) (transport.RebuildResponse, error) {
	if s.scheduler != nil {
		if err := s.scheduler.ScheduleRebuild(ctx, organizationID); err != nil {
			return transport.RebuildResponse{}, apperr.Wrap(apperr.KindUnavailable, "could not schedule segment rebuild", err)
		}
		return transport.RebuildResponse{Scheduled: true}, nil
	}
	return s.Rebuild(ctx, organizationID)
}

// Rebuild recomputes the members and sizes of every active segment of the
// organization from its current population.
func (s *Service) Rebuild(ctx context.Context, organizationID uuid.UUID) (transport.RebuildResponse, error) {
	all, err := s.repo.List(ctx, organizationID)
	if err != nil {
		return transport.RebuildResponse{}, err
	}
	active := make([]domain.Segment, 0, len(all))
	for _, segment := range all {
		if segment.IsActive {
			active = append(active, segment)
		}
	}
	if len(active) == 0 {
		return transport.RebuildResponse{}, nil
	}

	population, err := s.loadPopulation(ctx, organizationID)
	if err != nil {
		return transport.RebuildResponse{}, err
	}

	memberships := domain.RebuildMembership(active, population)
	updates := make([]repository.MembershipUpdate, 0, len(active))
	total := 0
	for _, segment := range active {
		ids := memberships[segment.ID]
		total += len(ids)
		updates = append(updates, repository.MembershipUpdate{
			SegmentID:     segment.ID,
			LeadIDs:       ids,
			EstimatedSize: domain.EstimateSize(segment, population).Ptr(),
		})
	}

	if err := s.repo.ReplaceMembers(ctx, organizationID, updates, s.now().UTC()); err != nil {
		return transport.RebuildResponse{}, err
	}
	s.invalidate(ctx, organizationID)

	for _, u := range updates {
		s.publishChange(ctx, organizationID, u.SegmentID, events.SegmentChangeRebuilt, u.EstimatedSize)
	}
	s.log.Info("segment memberships rebuilt", "organizationId", organizationID, "segments", len(active), "members", total)
	return transport.RebuildResponse{Segments: len(active), Members: total}, nil
}

// OrganizationsWithSegments lists organizations that have active segments.
func (s *Service) OrganizationsWithSegments(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListOrganizationIDs(ctx)
}

// HandleLeadsChanged drops cached memberships and schedules a rebuild.
func (s *Service) HandleLeadsChanged(ctx context.Context, e events.LeadsChanged) error {
	s.invalidate(ctx, e.OrganizationID)
	if _, err := s.RequestRebuild(ctx, e.OrganizationID); err != nil {
		s.log.Error("segment rebuild after lead change failed", "organizationId", e.OrganizationID, "change", e.Change, "error", err)
		return err
	}
	return nil
}

func (s *Service) get(ctx context.Context, organizationID, id uuid.UUID) (domain.Segment, error) {
	segment, err := s.repo.GetByID(ctx, organizationID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Segment{}, apperr.NotFound(errSegmentNotFound)
	}
	return segment, err
}

// loadPopulation returns nil when the organization has no leads, so size
// estimates come back unknown rather than zero.
func (s *Service) loadPopulation(ctx context.Context, organizationID uuid.UUID) ([]leaddomain.Lead, error) {
	population, err := s.population.Population(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if len(population) == 0 {
		return nil, nil
	}
	return population, nil
}

func (s *Service) dropMembers(ctx context.Context, segment domain.Segment) {
	if err := s.members.Delete(ctx, memberKey(segment.OrganizationID, segment.ID)); err != nil {
		s.log.Warn("segment members cache delete failed", "segmentId", segment.ID, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context, organizationID uuid.UUID) {
	if err := s.members.DeletePrefix(ctx, organizationID.String()); err != nil {
		s.log.Warn("segment members cache invalidation failed", "organizationId", organizationID, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, segment domain.Segment, change events.SegmentChange) {
	s.publishChange(ctx, segment.OrganizationID, segment.ID, change, segment.EstimatedSize.Ptr())
}

func (s *Service) publishChange(ctx context.Context, organizationID, segmentID uuid.UUID, change events.SegmentChange, size *int) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.SegmentChanged{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: organizationID,
		SegmentID:      segmentID,
		Change:         change,
		EstimatedSize:  size,
	})
}

func memberKey(organizationID, segmentID uuid.UUID) string {
	return organizationID.String() + ":" + segmentID.String()
}

func newIndex() *search.Index[domain.Segment] {
	return search.NewIndex[domain.Segment]().
		Text(
			func(s domain.Segment) string { return s.Name },
			func(s domain.Segment) string { return s.Description },
		).
		Facet("active", func(s domain.Segment) []string { return []string{strconv.FormatBool(s.IsActive)} }).
		Sort("date", func(a, b domain.Segment) int { return a.CreatedAt.Compare(b.CreatedAt) }).
		Sort("name", func(a, b domain.Segment) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }).
		Sort("size", func(a, b domain.Segment) int {
			// Unknown sizes order before every known size.
			an, aok := a.EstimatedSize.Count()
			bn, bok := b.EstimatedSize.Count()
			if aok != bok {
				if !aok {
					return -1
				}
				return 1
			}
			return cmp.Compare(an, bn)
		}).
		DefaultSort("date", search.SortDesc)
}
