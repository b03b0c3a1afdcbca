// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"dealradar/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	IngestHandler  *handler.IngestHandler
	CatalogHandler *handler.CatalogHandler
	LiveHandler    *handler.LiveHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	ingestHandler  *handler.IngestHandler
	catalogHandler *handler.CatalogHandler
	liveHandler    *handler.LiveHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		ingestHandler:  params.IngestHandler,
		catalogHandler: params.CatalogHandler,
		liveHandler:    params.LiveHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Live updates over websocket
	e.GET("/ws", r.liveHandler.Connect)

	apiGroup := e.Group("/api/v1")
	{
		apiGroup.POST("/ingest/refresh", r.ingestHandler.Refresh)

		apiGroup.GET("/stores", r.catalogHandler.ListStores)
		apiGroup.GET("/stores/:id/products", r.catalogHandler.ListStoreDeals)
		apiGroup.GET("/products/:id/history", r.catalogHandler.PriceHistory)
	}
}
