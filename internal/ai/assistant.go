package ai

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/metrics"
)

// Assistant implements the best-effort text tasks on top of a Completer.
// None of its methods return an error: failures are logged, counted and
// replaced with a local default.
type Assistant struct {
	completer Completer
}

func NewAssistant(c Completer) *Assistant {
	return &Assistant{completer: c}
}

func (a *Assistant) complete(ctx context.Context, task, system, prompt string) (string, bool) {
	if a == nil || a.completer == nil {
		metrics.AIFallback(task)
		return "", false
	}
	out, err := a.completer.Complete(ctx, task, system, prompt)
	if err != nil {
		slog.Warn("AI request degraded, using fallback", "action", "ai_"+task, "error", err)
		metrics.AIFallback(task)
		return "", false
	}
	return out, true
}
