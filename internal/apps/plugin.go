package apps

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
)

// Deps are the shared collaborators handed to every feature plugin.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Cache     cache.Cache
	Clock     *calendar.Clock
	Assistant *ai.Assistant
}

// Plugin defines the interface every feature must implement.
type Plugin interface {
	// ID returns the unique feature identifier, used in logs.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts feature routes on the given Fiber group.
	// The group is already prefixed with /api/v1 and has JWT middleware applied.
	RegisterRoutes(router fiber.Router)

	// PurgeUser removes every row the feature owns for userID. It runs inside
	// the account deletion transaction.
	PurgeUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}
