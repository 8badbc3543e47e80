package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/dto"
)

// Pinger reports whether a dependency answers.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	db        Pinger
	cache     Pinger
	aiEnabled bool
}

// NewHealthHandler takes a nil cache pinger when Redis is not configured.
func NewHealthHandler(db, cache Pinger, aiEnabled bool) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, aiEnabled: aiEnabled}
}

// Check answers 503 only when the database is down.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        "ok",
		Cache:     "disabled",
		AI:        "fallback",
	}

	if err := h.db(ctx); err != nil {
		resp.Status = "degraded"
		resp.DB = "unhealthy: " + err.Error()
	}
	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache(ctx); err != nil {
			resp.Cache = "unhealthy: " + err.Error()
		}
	}
	if h.aiEnabled {
		resp.AI = "ok"
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
