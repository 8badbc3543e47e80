package services

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStateStoreSingleUse(t *testing.T) {
	s := NewMemoryStateStore()
	ctx := context.Background()

	if err := s.Save(ctx, "abc", time.Minute); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Consume(ctx, "abc"); !ok {
		t.Fatal("first Consume() = false")
	}
	if ok, _ := s.Consume(ctx, "abc"); ok {
		t.Error("second Consume() = true, state must be single use")
	}
	if ok, _ := s.Consume(ctx, "never-saved"); ok {
		t.Error("Consume() of unknown state = true")
	}
}

func TestMemoryStateStoreExpiry(t *testing.T) {
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStateStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.Save(ctx, "old", StateTTL)
	s.Save(ctx, "fresh", StateTTL)
	now = now.Add(StateTTL + time.Second)

	if ok, _ := s.Consume(ctx, "old"); ok {
		t.Error("expired state accepted")
	}

	s.Save(ctx, "newer", StateTTL)
	if _, ok := s.states["fresh"]; ok {
		t.Error("Save() should sweep expired states")
	}
	if ok, _ := s.Consume(ctx, "newer"); !ok {
		t.Error("fresh state rejected")
	}
}

func TestNewStateStoreWithoutRedis(t *testing.T) {
	if _, ok := NewStateStore(nil).(*MemoryStateStore); !ok {
		t.Error("NewStateStore(nil) should fall back to memory")
	}
}
