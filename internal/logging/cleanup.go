package logging

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/models"
)

// Retention is how long system_logs rows are kept.
const Retention = 30 * 24 * time.Hour

// StartCleanup runs a daily goroutine that deletes system_logs older than Retention.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleteExpired(db, time.Now())
			case <-done:
				return
			}
		}
	}()
}

func deleteExpired(db *gorm.DB, now time.Time) {
	result := db.Where("timestamp < ?", now.Add(-Retention)).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Warn("log cleanup failed", "action", "log_cleanup", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "action", "log_cleanup", "deleted", result.RowsAffected)
	}
}
