package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/apps/checkins"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/apps/journal"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	loc, err := calendar.LoadLocation(cfg.DayBoundaryTZ)
	if err != nil {
		slog.Error("invalid DAY_BOUNDARY_TZ", "value", cfg.DayBoundaryTZ, "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// stdout + optional rolling file + PostgreSQL (ERROR+ async batch)
	pgLogHandler := logging.Install(cfg, database.DB)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Redis is optional: without it reads go straight to Postgres and OAuth
	// state lives in process memory.
	var redisClient *redis.Client
	var readCache cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			readCache = cache.NewRedisCache(redisClient, cfg.CacheTTL)
			slog.Info("redis connected", "addr", cfg.RedisAddr)
		}
	}

	aiClient := ai.NewClientFromConfig(cfg)
	if !aiClient.Enabled() {
		slog.Warn("no AI provider configured, using fallbacks")
	}

	deps := &apps.Deps{
		DB:        database.DB,
		Config:    cfg,
		Cache:     readCache,
		Clock:     calendar.NewClock(loc),
		Assistant: ai.NewAssistant(aiClient),
	}

	journalPlugin := journal.New(deps)
	plugins := []apps.Plugin{
		journalPlugin,
		checkins.New(deps, journalPlugin),
	}

	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}

	// Services
	purgers := make([]services.UserPurger, len(plugins))
	for i, p := range plugins {
		purgers[i] = p
	}
	authService := services.NewAuthService(database.DB, cfg, purgers...)
	oauthService := services.NewOAuthService(cfg, services.NewStateStore(redisClient))

	// Handlers
	var cachePing handlers.Pinger
	if redisClient != nil {
		cachePing = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	authHandler := handlers.NewAuthHandler(authService, oauthService)
	healthHandler := handlers.NewHealthHandler(database.Ping, cachePing, aiClient.Enabled())
	adminHandler := handlers.NewAdminHandler(database.DB)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, database.DB, authHandler, healthHandler, adminHandler, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "day_boundary", loc.String())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
