package journal

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
)

type JournalPlugin struct {
	service *JournalService
}

func New(deps *apps.Deps) *JournalPlugin {
	repo := NewCachedRepository(NewGormRepository(deps.DB), deps.Cache, deps.Config.CacheTTL)
	return &JournalPlugin{
		service: NewJournalService(repo, deps.Assistant, deps.Clock),
	}
}

func (p *JournalPlugin) ID() string { return "journal" }

func (p *JournalPlugin) Models() []interface{} {
	return []interface{}{&Entry{}}
}

func (p *JournalPlugin) RegisterRoutes(router fiber.Router) {
	handler := NewJournalHandler(p.service)

	router.Get("/journal/search", handler.Search)
	router.Post("/journal", handler.Create)
	router.Get("/journal", handler.List)
	router.Get("/journal/:id", handler.Get)
	router.Put("/journal/:id", handler.Update)
	router.Delete("/journal/:id", handler.Delete)
	router.Post("/journal/:id/summary", handler.Summary)
}

// CountOn lets the dashboard show today's journal activity.
func (p *JournalPlugin) CountOn(ctx context.Context, userID uuid.UUID, day calendar.Date) (int64, error) {
	return p.service.CountOn(ctx, userID, day)
}

func (p *JournalPlugin) PurgeUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return p.service.Purge(ctx, tx, userID)
}
