package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chynybekuuludastan/cro_optimizer/internal/api/handlers"
	ws "github.com/chynybekuuludastan/cro_optimizer/internal/api/websocket"
	"github.com/chynybekuuludastan/cro_optimizer/internal/config"
	"github.com/chynybekuuludastan/cro_optimizer/internal/metrics"
)

// Dependencies are the services the routes are wired to.
type Dependencies struct {
	Analyzer    handlers.CROService
	Recommender handlers.Recommender
	Hub         *ws.Hub
	Metrics     *metrics.Metrics
	Config      *config.Config
	Logger      *slog.Logger

	// BaseCtx outlives single requests; streamed comparisons run under it.
	BaseCtx context.Context
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Dependencies) {
	if deps.BaseCtx == nil {
		deps.BaseCtx = context.Background()
	}

	croHandler := handlers.NewCROHandler(deps.Analyzer, deps.Logger)
	seoHandler := handlers.NewSEOHandler(deps.Recommender, deps.Logger)
	wsHandler := handlers.NewWebSocketHandler(deps.BaseCtx, deps.Hub, deps.Analyzer, deps.Logger)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to " + deps.Config.APITitle,
		})
	})

	// API group
	api := app.Group("/api")

	// Health check route
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": deps.Config.APIVersion,
		})
	})

	cro := api.Group("/cro")
	cro.Post("/recommendations", croHandler.GetRecommendations)
	cro.Post("/compare", croHandler.Compare)

	seo := api.Group("/seo")
	seo.Post("/recommendations", seoHandler.GetRecommendations)

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(
			promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}),
		))
	}

	// WebSocket endpoints for streamed comparisons
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws/cro/compare", websocket.New(wsHandler.HandleCompare))
	app.Get("/ws/cro/compare/:id", websocket.New(wsHandler.HandleWatch))
}
