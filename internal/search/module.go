// Package search provides in-memory list views (filter, sort and page) over
// organization collections, and the organization-wide search endpoint.
package search

import (
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/internal/search/handler"
	"leadscout_backend/internal/search/repository"
	"leadscout_backend/internal/search/service"
	"leadscout_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the global search module.
type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "search"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/search")
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
