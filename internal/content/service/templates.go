package service

import (
	"cmp"
	"context"
	"errors"
	"strings"

	"leadscout_backend/internal/content/domain"
	"leadscout_backend/internal/content/repository"
	"leadscout_backend/internal/content/template"
	"leadscout_backend/internal/content/transport"
	"leadscout_backend/internal/search"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	errTemplateNotFound  = "content template not found"
	errTemplateDuplicate = "a template with this name already exists"
)

// TemplateService manages prompt templates and renders them.
type TemplateService struct {
	repo  repository.TemplateRepository
	log   *logger.Logger
	index *search.Index[domain.Template]
}

// NewTemplateService creates a template service.
func NewTemplateService(repo repository.TemplateRepository, log *logger.Logger) *TemplateService {
	return &TemplateService{
		repo: repo,
		log:  log,
		index: search.NewIndex[domain.Template]().
			Text(
				func(t domain.Template) string { return t.Name },
				func(t domain.Template) string { return t.Prompt },
			).
			Facet("platform", func(t domain.Template) []string { return []string{t.Platform} }).
			Facet("category", func(t domain.Template) []string { return []string{t.Category} }).
			Sort("name", func(a, b domain.Template) int {
				return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
			}).
			DefaultSort("name", search.SortAsc),
	}
}

func (s *TemplateService) Create(ctx context.Context, organizationID uuid.UUID, req transport.CreateTemplateRequest) (domain.Template, error) {
	tpl, err := s.repo.CreateTemplate(ctx, domain.Template{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Name:           sanitize.Line(req.Name),
		Platform:       strings.ToLower(strings.TrimSpace(req.Platform)),
		Category:       sanitize.Line(req.Category),
		Prompt:         req.Prompt,
	})
	if errors.Is(err, repository.ErrDuplicateName) {
		return domain.Template{}, apperr.Conflict(errTemplateDuplicate)
	}
	if err != nil {
		return domain.Template{}, err
	}

	s.log.Info("content template created", "id", tpl.ID, "organizationId", organizationID, "variables", len(tpl.Variables()))
	return tpl, nil
}

func (s *TemplateService) GetByID(ctx context.Context, organizationID, id uuid.UUID) (domain.Template, error) {
	tpl, err := s.repo.GetTemplate(ctx, organizationID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Template{}, apperr.NotFound(errTemplateNotFound)
	}
	return tpl, err
}

func (s *TemplateService) Update(ctx context.Context, organizationID, id uuid.UUID, req transport.UpdateTemplateRequest) (domain.Template, error) {
	tpl, err := s.GetByID(ctx, organizationID, id)
	if err != nil {
		return domain.Template{}, err
	}

	if req.Name != nil {
		tpl.Name = sanitize.Line(*req.Name)
	}
	if req.Platform != nil {
		tpl.Platform = strings.ToLower(strings.TrimSpace(*req.Platform))
	}
	if req.Category != nil {
		tpl.Category = sanitize.Line(*req.Category)
	}
	if req.Prompt != nil {
		tpl.Prompt = *req.Prompt
	}

	updated, err := s.repo.UpdateTemplate(ctx, tpl)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return domain.Template{}, apperr.NotFound(errTemplateNotFound)
	case errors.Is(err, repository.ErrDuplicateName):
		return domain.Template{}, apperr.Conflict(errTemplateDuplicate)
	case err != nil:
		return domain.Template{}, err
	}

	s.log.Info("content template updated", "id", id, "organizationId", organizationID)
	return updated, nil
}

func (s *TemplateService) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	err := s.repo.DeleteTemplate(ctx, organizationID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(errTemplateNotFound)
	}
	if err != nil {
		return err
	}
	s.log.Info("content template deleted", "id", id, "organizationId", organizationID)
	return nil
}

// List returns templates ordered by name, ignoring case.
func (s *TemplateService) List(ctx context.Context, organizationID uuid.UUID, req transport.ListTemplatesRequest) (transport.TemplateListResponse, error) {
	templates, err := s.repo.ListTemplates(ctx, organizationID)
	if err != nil {
		return transport.TemplateListResponse{}, err
	}
	query := search.Query{
		Search:   req.Search,
		Filters:  map[string]string{"platform": req.Platform, "category": req.Category},
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	return s.index.Page(templates, query), nil
}

// Render fills a stored template.
func (s *TemplateService) Render(ctx context.Context, organizationID, id uuid.UUID, req transport.RenderTemplateRequest) (transport.RenderResponse, error) {
	tpl, err := s.GetByID(ctx, organizationID, id)
	if err != nil {
		return transport.RenderResponse{}, err
	}
	return render(tpl.Prompt, req.Values), nil
}

// Preview fills an unsaved prompt.
func (s *TemplateService) Preview(req transport.PreviewTemplateRequest) transport.RenderResponse {
	return render(req.Prompt, req.Values)
}

func render(prompt string, values map[string]string) transport.RenderResponse {
	missing := template.Missing(prompt, values)
	if missing == nil {
		missing = []string{}
	}
	return transport.RenderResponse{
		Rendered:  template.Render(prompt, values),
		Variables: template.ExtractVariables(prompt),
		Missing:   missing,
	}
}
