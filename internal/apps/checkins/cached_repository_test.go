package checkins

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
)

func TestCachedRepositoryServesReadsFromCache(t *testing.T) {
	ctx := context.Background()
	inner := newMemRepo()
	c := newMemCache()
	repo := NewCachedRepository(inner, c, 0)
	user := uuid.New()
	inner.seed(user, today, mood.Good, "lesson", "one", "two")

	first, err := repo.ListByUser(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.ListByUser(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if inner.reads != 1 {
		t.Errorf("inner reads = %d, want 1", inner.reads)
	}
	if len(second) != 1 || !second[0].CheckDate.Equal(first[0].CheckDate) ||
		second[0].Lessons() != "lesson" || len(second[0].Learnings) != 2 {
		t.Errorf("cached list did not round-trip: %+v", second)
	}
}

func TestCachedRepositoryInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	inner := newMemRepo()
	c := newMemCache()
	repo := NewCachedRepository(inner, c, 0)
	user := uuid.New()

	if _, err := repo.ListByUser(ctx, user); err != nil {
		t.Fatal(err)
	}

	ci := &CheckIn{
		ID: uuid.New(), UserID: user, CheckDate: today, OverallMood: mood.Okay,
		Emotions: datatypes.NewJSONType(mood.Tallies{mood.Sad: 1}),
	}
	if err := repo.Create(ctx, ci); err != nil {
		t.Fatal(err)
	}

	list, _ := repo.ListByUser(ctx, user)
	if len(list) != 1 {
		t.Fatalf("list after create = %d items, stale cache", len(list))
	}

	day, _ := repo.FindByDate(ctx, user, today)
	if day.OverallMood != mood.Okay || day.Emotions.Data()[mood.Sad] != 1 {
		t.Fatalf("FindByDate() = %+v", day)
	}

	ci.OverallMood = mood.Great
	if err := repo.Update(ctx, ci, false, false); err != nil {
		t.Fatal(err)
	}
	day, _ = repo.FindByDate(ctx, user, today)
	if day.OverallMood != mood.Great {
		t.Errorf("FindByDate() after update = %s, stale cache", day.OverallMood)
	}
	list, _ = repo.ListByUser(ctx, user)
	if list[0].OverallMood != mood.Great {
		t.Errorf("ListByUser() after update = %s, stale cache", list[0].OverallMood)
	}

	want := map[string]bool{listKey(user): true, dayKey(user, today): true}
	for _, k := range c.deleted {
		delete(want, k)
	}
	if len(want) != 0 {
		t.Errorf("keys never invalidated: %v", want)
	}
}

func TestCachedRepositoryDoesNotCacheMisses(t *testing.T) {
	ctx := context.Background()
	inner := newMemRepo()
	repo := NewCachedRepository(inner, newMemCache(), 0)
	user := uuid.New()

	if _, err := repo.FindByDate(ctx, user, today); !errors.Is(err, ErrCheckInNotFound) {
		t.Fatalf("FindByDate() error = %v", err)
	}
	inner.seed(user, today, mood.Good, "")
	if _, err := repo.FindByDate(ctx, user, today); err != nil {
		t.Errorf("FindByDate() after seed error = %v", err)
	}
}

func TestCachedRepositoryFailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	inner := newMemRepo()
	c := newMemCache()
	repo := NewCachedRepository(inner, c, 0)
	user := uuid.New()
	inner.seed(user, today, mood.Good, "")

	_, _ = repo.ListByUser(ctx, user)
	err := repo.Create(ctx, &CheckIn{ID: uuid.New(), UserID: user, CheckDate: today, OverallMood: mood.Bad})
	if !errors.Is(err, ErrCheckInExists) {
		t.Fatalf("Create() error = %v, want ErrCheckInExists", err)
	}
	if len(c.deleted) != 0 {
		t.Errorf("failed write invalidated %v", c.deleted)
	}
}

func TestCachedRepositoryDeleteByUser(t *testing.T) {
	ctx := context.Background()
	inner := newMemRepo()
	c := newMemCache()
	repo := NewCachedRepository(inner, c, 0)
	user := uuid.New()
	inner.seed(user, today, mood.Good, "")

	_, _ = repo.FindByDate(ctx, user, today)
	_, _ = repo.ListByUser(ctx, user)

	if err := repo.DeleteByUser(ctx, nil, user); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByDate(ctx, user, today); !errors.Is(err, ErrCheckInNotFound) {
		t.Errorf("FindByDate() after purge error = %v", err)
	}
	if list, _ := repo.ListByUser(ctx, user); len(list) != 0 {
		t.Errorf("ListByUser() after purge = %d items", len(list))
	}
}

func TestNewCachedRepositoryNilCache(t *testing.T) {
	inner := newMemRepo()
	repo := NewCachedRepository(inner, nil, 0)
	user := uuid.New()
	_, _ = repo.ListByUser(context.Background(), user)
	_, _ = repo.ListByUser(context.Background(), user)
	if inner.reads != 2 {
		t.Errorf("inner reads = %d, want 2 without a cache", inner.reads)
	}
}
