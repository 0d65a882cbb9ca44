// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"leadscout_backend/internal/events"
	"leadscout_backend/internal/exports"
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/internal/leads/handler"
	"leadscout_backend/internal/leads/ports"
	"leadscout_backend/internal/leads/repository"
	"leadscout_backend/internal/leads/service"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, settings ports.ScoringSettingsProvider, exporter *exports.Service, eventBus events.Bus, val *validator.Validator, cfg service.Config, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, settings, exporter, eventBus, cfg, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service for use by adapters and the rescore CLI.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	leads.GET("", m.handler.List)
	leads.POST("", m.handler.Create)
	leads.POST("/import", m.handler.Import)
	leads.POST("/score", m.handler.Preview)
	leads.GET("/export", m.handler.Export)
	leads.GET("/:id", m.handler.GetByID)
	leads.PATCH("/:id", m.handler.Update)
	leads.DELETE("/:id", m.handler.Delete)
}

var _ apphttp.Module = (*Module)(nil)
