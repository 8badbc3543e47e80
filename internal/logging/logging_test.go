package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// idleHandler returns a PGHandler whose flush loop never runs.
func idleHandler() *PGHandler {
	return &PGHandler{sink: &pgSink{}}
}

func TestPGHandlerOnlyErrors(t *testing.T) {
	h := idleHandler()
	ctx := context.Background()
	if h.Enabled(ctx, slog.LevelWarn) {
		t.Error("WARN should not be persisted")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("ERROR should be persisted")
	}
}

func TestPGHandlerMapsColumns(t *testing.T) {
	h := idleHandler()
	logger := slog.New(h).With("request_id", "req-1")

	logger.Error("create failed",
		"action", "checkin_create",
		"user_id", "u-1",
		"path", "/api/v1/check-ins",
		"error", "boom",
		"latency_ms", 12.6,
		"mood", "Bad",
	)

	got := h.buffered()
	if len(got) != 1 {
		t.Fatalf("buffered %d records, want 1", len(got))
	}
	e := got[0]
	if e.Action != "checkin_create" || e.Error != "boom" || e.Path != "/api/v1/check-ins" || e.TraceID != "req-1" {
		t.Errorf("columns = %+v", e)
	}
	if e.UserID == nil || *e.UserID != "u-1" {
		t.Errorf("UserID = %v", e.UserID)
	}
	if e.LatencyMs != 13 {
		t.Errorf("LatencyMs = %d, want 13", e.LatencyMs)
	}

	var extra map[string]interface{}
	if err := json.Unmarshal(e.Extra, &extra); err != nil {
		t.Fatal(err)
	}
	if extra["mood"] != "Bad" || len(extra) != 1 {
		t.Errorf("extra = %v", extra)
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	var info, errs bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("action", "test")

	logger.Info("hello")
	logger.Error("bad")

	if n := strings.Count(info.String(), "\n"); n != 2 {
		t.Errorf("info sink got %d lines, want 2", n)
	}
	if n := strings.Count(errs.String(), "\n"); n != 1 {
		t.Errorf("error sink got %d lines, want 1", n)
	}
	if !strings.Contains(errs.String(), `"action":"test"`) {
		t.Errorf("attrs not propagated: %s", errs.String())
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("DEBUG should be disabled on every sink")
	}
}

func TestRetention(t *testing.T) {
	if Retention != 30*24*time.Hour {
		t.Errorf("Retention = %v", Retention)
	}
}
