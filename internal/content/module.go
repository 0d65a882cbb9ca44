// Package content provides the content planning module: post drafts and
// reusable prompt templates.
package content

import (
	"leadscout_backend/internal/content/handler"
	"leadscout_backend/internal/content/repository"
	"leadscout_backend/internal/content/service"
	"leadscout_backend/internal/exports"
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the content module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the content module.
func NewModule(pool *pgxpool.Pool, exporter *exports.Service, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	return &Module{
		handler: handler.New(
			service.NewItemService(repo, exporter, log),
			service.NewTemplateService(repo, log),
			val,
		),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "content"
}

// RegisterRoutes mounts content routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	items := ctx.Protected.Group("/content/items")
	items.GET("", m.handler.ListItems)
	items.POST("", m.handler.CreateItem)
	items.GET("/export", m.handler.ExportItems)
	items.GET("/:id", m.handler.GetItem)
	items.PATCH("/:id", m.handler.UpdateItem)
	items.POST("/:id/archive", m.handler.ArchiveItem)

	templates := ctx.Protected.Group("/content/templates")
	templates.GET("", m.handler.ListTemplates)
	templates.POST("", m.handler.CreateTemplate)
	templates.POST("/preview", m.handler.PreviewTemplate)
	templates.GET("/:id", m.handler.GetTemplate)
	templates.PATCH("/:id", m.handler.UpdateTemplate)
	templates.DELETE("/:id", m.handler.DeleteTemplate)
	templates.POST("/:id/render", m.handler.RenderTemplate)
}

var _ apphttp.Module = (*Module)(nil)
