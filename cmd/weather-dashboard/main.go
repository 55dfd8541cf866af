package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	httpapi "github.com/skycast/weather-dashboard/internal/api/http"
	"github.com/skycast/weather-dashboard/internal/config"
	"github.com/skycast/weather-dashboard/internal/health"
	"github.com/skycast/weather-dashboard/internal/weather"
	"github.com/skycast/weather-dashboard/internal/weather/providers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
	}

	// Provider is selected once at startup. A missing credential fails here,
	// before the server accepts any request.
	var provider weather.Provider
	switch cfg.Provider {
	case config.ProviderOpenWeather:
		provider, err = providers.NewOpenWeatherProvider(httpClient, cfg.APIKey, cfg.BaseURL)
	default:
		provider, err = providers.NewWeatherAPIProvider(httpClient, cfg.APIKey, cfg.BaseURL)
	}
	if err != nil {
		log.Fatalf("failed to configure weather provider: %v", err)
	}

	// Background reachability probe feeding /health.
	monitor := health.NewMonitor(
		&http.Client{Timeout: 10 * time.Second},
		providers.ProbeURL(cfg.Provider, cfg.BaseURL),
		cfg.HealthInterval,
	)
	if err := monitor.Start(); err != nil {
		log.Fatalf("failed to start health monitor: %v", err)
	}
	defer monitor.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          15 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Last-resort guard: nothing internal reaches the client.
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   "an unexpected error occurred, please try again later",
				"code":    weather.KindInternal,
				"retry":   false,
			})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint backed by the reachability monitor.
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if !monitor.Reachable() {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status":    status,
			"service":   "weather-dashboard",
			"provider":  provider.Name(),
			"upstream":  monitor.Reachable(),
			"checkedAt": monitor.CheckedAt(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, provider)

	// Static frontend.
	app.Static("/", cfg.StaticDir)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
