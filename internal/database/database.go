package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/models"
)

var DB *gorm.DB

// Open connects to Postgres at dsn. Driver errors are translated so unique
// violations surface as gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

func Connect(cfg *config.Config) error {
	db, err := Open(cfg.DSN())
	if err != nil {
		return err
	}
	DB = db
	slog.Info("database connected")
	return nil
}

// SharedModels are the tables every deployment needs regardless of plugins.
func SharedModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.SystemLog{},
	}
}

// MigrateShared runs AutoMigrate for shared models.
func MigrateShared() error {
	return DB.AutoMigrate(SharedModels()...)
}

// MigrateModels runs AutoMigrate for arbitrary models (used by plugins).
func MigrateModels(modelList []interface{}) error {
	if len(modelList) == 0 {
		return nil
	}
	return DB.AutoMigrate(modelList...)
}

func Ping(ctx context.Context) error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
