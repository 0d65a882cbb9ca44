// Package settings provides the per-organization scoring configuration module.
package settings

import (
	"leadscout_backend/internal/events"
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/internal/settings/handler"
	"leadscout_backend/internal/settings/repository"
	"leadscout_backend/internal/settings/service"
	"leadscout_backend/platform/cache"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the scoring settings module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the settings module. settingsCache may be nil.
func NewModule(pool *pgxpool.Pool, settingsCache *cache.JSONCache, bus events.Bus, val *validator.Validator, log *logger.Logger, defaultProfile string) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, settingsCache, bus, log, defaultProfile)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "settings"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts settings routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/scoring/settings", m.handler.Get)
	ctx.Protected.GET("/scoring/profiles", m.handler.ListProfiles)

	admin := ctx.Admin.Group("/scoring/settings")
	admin.PUT("/weights", m.handler.UpdateWeights)
	admin.PUT("/thresholds", m.handler.UpdateThresholds)
	admin.POST("/profile", m.handler.ApplyProfile)
}

var _ apphttp.Module = (*Module)(nil)
