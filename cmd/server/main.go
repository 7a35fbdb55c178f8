package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chynybekuuludastan/cro_optimizer/docs"
	"github.com/chynybekuuludastan/cro_optimizer/internal/api"
	ws "github.com/chynybekuuludastan/cro_optimizer/internal/api/websocket"
	"github.com/chynybekuuludastan/cro_optimizer/internal/config"
	"github.com/chynybekuuludastan/cro_optimizer/internal/logger"
	"github.com/chynybekuuludastan/cro_optimizer/internal/metrics"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/analyzer"
)

const shutdownTimeout = 15 * time.Second

// @title CRO Optimizer API
// @version 1.0.0
// @description Conversion rate optimization and performance scoring for web pages

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api
// @schemes http https
func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg := config.NewConfig()
	level, _ := config.ParseLevel(cfg.LogLevel)
	log, _ := logger.New(level)
	slog.SetDefault(log)

	if envErr != nil {
		log.Debug(".env file not found, using process environment")
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	docs.SwaggerInfo.Title = cfg.APITitle
	docs.SwaggerInfo.Description = cfg.APIDescription
	docs.SwaggerInfo.Version = cfg.APIVersion

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engines, err := service.NewFactory(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start engines", slog.Any("error", err))
		os.Exit(1)
	}
	defer engines.Close()

	m := metrics.New()
	crAnalyzer := analyzer.New(engines.Fetcher, engines.Meter,
		analyzer.WithLogger(log),
		analyzer.WithMetrics(m),
	)

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	app := api.NewApp(cfg, log)
	api.SetupRoutes(app, api.Dependencies{
		Analyzer:    crAnalyzer,
		Recommender: engines.RecommendationService(cfg, log),
		Hub:         hub,
		Metrics:     m,
		Config:      cfg,
		Logger:      log,
		BaseCtx:     ctx,
	})

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening",
			slog.String("port", cfg.Port),
			slog.String("environment", cfg.Environment),
		)
		serverErr <- app.Listen(":" + cfg.Port)
	}()

	// Graceful shutdown
	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("server stopped", slog.Any("error", err))
			engines.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("server shutdown failed", slog.Any("error", err))
		}
	}
}
