package journal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"plain":   "plain",
		"100%":    `100\%`,
		"snake_1": `snake\_1`,
		`back\`:   `back\\`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCachedRepositoryFirstPage(t *testing.T) {
	now := base
	inner := newMemRepo(func() time.Time { return now })
	c := newMemCache()
	repo := NewCachedRepository(inner, c, time.Hour)
	ctx := context.Background()
	user := uuid.New()

	if err := repo.Create(ctx, &Entry{ID: uuid.New(), UserID: user, Content: "one", Mood: "Good"}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		entries, total, err := repo.List(ctx, user, DefaultLimit, 0)
		if err != nil || total != 1 || len(entries) != 1 {
			t.Fatalf("List() = %d entries, total %d, err %v", len(entries), total, err)
		}
	}
	if inner.lists != 1 {
		t.Errorf("inner List calls = %d, want 1", inner.lists)
	}

	repo.List(ctx, user, 5, 0)
	repo.List(ctx, user, DefaultLimit, 20)
	if inner.lists != 3 {
		t.Errorf("other pages should bypass the cache, inner calls = %d", inner.lists)
	}

	now = now.Add(time.Minute)
	second := &Entry{ID: uuid.New(), UserID: user, Content: "two", Mood: "Okay"}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatal(err)
	}
	entries, total, _ := repo.List(ctx, user, DefaultLimit, 0)
	if total != 2 || entries[0].Content != "two" {
		t.Errorf("after create: total %d, first %q", total, entries[0].Content)
	}

	second.Content = "two edited"
	if err := repo.Update(ctx, second); err != nil {
		t.Fatal(err)
	}
	entries, _, _ = repo.List(ctx, user, DefaultLimit, 0)
	if entries[0].Content != "two edited" {
		t.Errorf("after update: first %q", entries[0].Content)
	}

	if err := repo.Delete(ctx, user, second.ID); err != nil {
		t.Fatal(err)
	}
	if _, total, _ := repo.List(ctx, user, DefaultLimit, 0); total != 1 {
		t.Errorf("after delete: total %d, want 1", total)
	}
}

func TestCachedRepositoryFailedWriteKeepsCache(t *testing.T) {
	inner := newMemRepo(func() time.Time { return base })
	c := newMemCache()
	repo := NewCachedRepository(inner, c, time.Hour)
	ctx := context.Background()
	user := uuid.New()

	repo.List(ctx, user, DefaultLimit, 0)
	if err := repo.Delete(ctx, user, uuid.New()); err == nil {
		t.Fatal("Delete of a missing entry should fail")
	}
	if _, ok := c.data[listKey(user)]; !ok {
		t.Error("failed delete dropped the cached page")
	}
}
