package logging

import (
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// Install replaces the default logger with the full fan-out: stdout, the
// rolling LOG_FILE when set, and the system_logs table for ERROR+ records.
// The returned PGHandler must be stopped on shutdown.
func Install(cfg *config.Config, db *gorm.DB) *PGHandler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	handlers := []slog.Handler{slog.NewJSONHandler(os.Stdout, opts)}

	if cfg.LogFile != "" {
		handlers = append(handlers, slog.NewJSONHandler(NewRollingFile(cfg), opts))
	}

	pg := NewPGHandler(db)
	handlers = append(handlers, pg)

	slog.SetDefault(slog.New(NewMultiHandler(handlers...)))
	return pg
}

// NewRollingFile returns a size-rotated, compressed log file.
func NewRollingFile(cfg *config.Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		LocalTime:  true,
		Compress:   true,
	}
}
