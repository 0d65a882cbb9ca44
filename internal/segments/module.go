// Package segments provides the audience segment bounded context module.
package segments

import (
	"context"

	"leadscout_backend/internal/events"
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/internal/segments/handler"
	"leadscout_backend/internal/segments/ports"
	"leadscout_backend/internal/segments/repository"
	"leadscout_backend/internal/segments/service"
	"leadscout_backend/platform/cache"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the segments module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the segments module. members and scheduler may be nil.
func NewModule(pool *pgxpool.Pool, population ports.PopulationReader, members *cache.JSONCache, scheduler ports.RebuildScheduler, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, population, members, scheduler, eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "segments"
}

// Service returns the segments service for the scheduler worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts segment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	segments := ctx.Protected.Group("/segments")
	segments.GET("", m.handler.List)
	segments.POST("", m.handler.Create)
	segments.POST("/preview", m.handler.Preview)
	segments.POST("/rebuild", m.handler.Rebuild)
	segments.GET("/:id", m.handler.GetByID)
	segments.PATCH("/:id", m.handler.Update)
	segments.POST("/:id/deactivate", m.handler.Deactivate)
	segments.POST("/:id/reactivate", m.handler.Reactivate)
	segments.GET("/:id/members", m.handler.Members)
}

// RegisterHandlers subscribes the module to lead population changes.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadsChanged{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadsChanged)
	if !ok {
		return nil
	}
	return m.service.HandleLeadsChanged(ctx, e)
}

var (
	_ apphttp.Module          = (*Module)(nil)
	_ apphttp.EventSubscriber = (*Module)(nil)
	_ events.Handler          = (*Module)(nil)
)
