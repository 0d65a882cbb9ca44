// Package handler exposes content items and templates over HTTP.
package handler

import (
	"net/http"

	"leadscout_backend/internal/content/service"
	"leadscout_backend/internal/content/transport"
	"leadscout_backend/internal/exports"
	"leadscout_backend/platform/httpkit"
	"leadscout_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errInvalidRequest = "invalid request"
	errValidation     = "validation failed"
	errInvalidID      = "invalid id"
)

// Handler serves content items and templates.
type Handler struct {
	items     *service.ItemService
	templates *service.TemplateService
	val       *validator.Validator
}

// New creates a new content handler.
func New(items *service.ItemService, templates *service.TemplateService, val *validator.Validator) *Handler {
	return &Handler{items: items, templates: templates, val: val}
}

// CreateItem POST /api/v1/content/items
func (h *Handler) CreateItem(c *gin.Context) {
	var req transport.CreateItemRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	item, err := h.items.Create(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, item)
}

// ListItems GET /api/v1/content/items
func (h *Handler) ListItems(c *gin.Context) {
	var req transport.ListItemsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.items.List(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ExportItems GET /api/v1/content/items/export
func (h *Handler) ExportItems(c *gin.Context) {
	var req transport.ExportItemsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	artifact, err := h.items.Export(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	exports.Respond(c, artifact)
}

// GetItem GET /api/v1/content/items/:id
func (h *Handler) GetItem(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	item, err := h.items.GetByID(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, item)
}

// UpdateItem PATCH /api/v1/content/items/:id
func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateItemRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	item, err := h.items.Update(c.Request.Context(), tenantID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, item)
}

// ArchiveItem retires an item without deleting it.
// POST /api/v1/content/items/:id/archive
func (h *Handler) ArchiveItem(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	item, err := h.items.Archive(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, item)
}

// CreateTemplate POST /api/v1/content/templates
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req transport.CreateTemplateRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	tpl, err := h.templates.Create(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, tpl)
}

// ListTemplates GET /api/v1/content/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	var req transport.ListTemplatesRequest
	if !h.bindQuery(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.templates.List(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// PreviewTemplate renders an unsaved prompt.
// POST /api/v1/content/templates/preview
func (h *Handler) PreviewTemplate(c *gin.Context) {
	var req transport.PreviewTemplateRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	httpkit.OK(c, h.templates.Preview(req))
}

// GetTemplate GET /api/v1/content/templates/:id
func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	tpl, err := h.templates.GetByID(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, tpl)
}

// UpdateTemplate PATCH /api/v1/content/templates/:id
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateTemplateRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	tpl, err := h.templates.Update(c.Request.Context(), tenantID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, tpl)
}

// DeleteTemplate DELETE /api/v1/content/templates/:id
func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	if err := h.templates.Delete(c.Request.Context(), tenantID, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

// RenderTemplate fills a stored template with the supplied values.
// POST /api/v1/content/templates/:id/render
func (h *Handler) RenderTemplate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req transport.RenderTemplateRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.templates.Render(c.Request.Context(), tenantID, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func (h *Handler) bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return false
	}
	return true
}
