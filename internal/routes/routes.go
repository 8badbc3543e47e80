package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/middleware"
)

func perIP(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
	plugins []apps.Plugin,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(perIP(60))

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(perIP(10))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/oauth/github", authHandler.GitHubURL)
	auth.Get("/oauth/github/callback", authHandler.GitHubCallback)

	// Protected auth routes get the middleware per route so the public ones
	// above stay open.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/logs", adminHandler.Logs)
	admin.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	protected := api.Group("/v1", middleware.JWTProtected(cfg))
	for _, p := range plugins {
		p.RegisterRoutes(protected)
	}
}
