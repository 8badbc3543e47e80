package checkins

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/apps"
)

type CheckInsPlugin struct {
	service *CheckInService
}

// New builds the check-in feature. entries feeds the dashboard's journal
// count and may be nil.
func New(deps *apps.Deps, entries EntryCounter) *CheckInsPlugin {
	repo := NewCachedRepository(NewGormRepository(deps.DB), deps.Cache, deps.Config.CacheTTL)
	return &CheckInsPlugin{
		service: NewCheckInService(repo, deps.Assistant, deps.Assistant, deps.Clock, entries),
	}
}

func (p *CheckInsPlugin) ID() string { return "checkins" }

func (p *CheckInsPlugin) Models() []interface{} {
	return []interface{}{
		&CheckIn{},
		&Learning{},
		&Memory{},
	}
}

func (p *CheckInsPlugin) RegisterRoutes(router fiber.Router) {
	handler := NewCheckInHandler(p.service)

	router.Post("/check-ins", handler.Create)
	router.Get("/check-ins", handler.List)
	router.Get("/check-ins/today", handler.Today)
	router.Get("/check-ins/date/:date", handler.GetByDate)
	router.Get("/check-ins/:id", handler.Get)
	router.Put("/check-ins/:id", handler.Update)

	router.Get("/dashboard", handler.Dashboard)
	router.Get("/memories", handler.Memories)

	router.Get("/support/reflections", handler.Reflections)
	router.Get("/support/perspective", handler.Perspective)
	router.Post("/support/encouragement", handler.Encouragement)
}

func (p *CheckInsPlugin) PurgeUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return p.service.Purge(ctx, tx, userID)
}
