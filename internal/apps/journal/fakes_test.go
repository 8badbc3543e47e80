package journal

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memRepo is an in-memory Repository. Timestamps come from now so tests can
// place entries on specific days.
type memRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]Entry
	now     func() time.Time
	lists   int
	// deleted users fail writes the way the users foreign key does.
	deleted map[uuid.UUID]bool
}

func newMemRepo(now func() time.Time) *memRepo {
	return &memRepo{byID: make(map[uuid.UUID]Entry), now: now, deleted: make(map[uuid.UUID]bool)}
}

func (r *memRepo) Create(_ context.Context, e *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted[e.UserID] {
		return ErrUnknownUser
	}
	e.CreatedAt = r.now()
	e.UpdatedAt = e.CreatedAt
	r.byID[e.ID] = *e
	return nil
}

func (r *memRepo) Update(_ context.Context, e *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[e.ID]
	if !ok || stored.UserID != e.UserID {
		return ErrEntryNotFound
	}
	stored.Content = e.Content
	stored.Mood = e.Mood
	stored.UpdatedAt = r.now()
	r.byID[e.ID] = stored
	return nil
}

func (r *memRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[id]
	if !ok || stored.UserID != userID {
		return ErrEntryNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || e.UserID != userID {
		return nil, ErrEntryNotFound
	}
	return &e, nil
}

func (r *memRepo) filter(userID uuid.UUID, keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range r.byID {
		if e.UserID == userID && keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func page(all []Entry, limit, offset int) []Entry {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func (r *memRepo) List(_ context.Context, userID uuid.UUID, limit, offset int) ([]Entry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	all := r.filter(userID, func(Entry) bool { return true })
	return page(all, limit, offset), int64(len(all)), nil
}

func (r *memRepo) Search(_ context.Context, userID uuid.UUID, query string, limit, offset int) ([]Entry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	all := r.filter(userID, func(e Entry) bool {
		return strings.Contains(strings.ToLower(e.Content), q) || string(e.Mood) == query
	})
	return page(all, limit, offset), int64(len(all)), nil
}

func (r *memRepo) CountBetween(_ context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filter(userID, func(e Entry) bool {
		return !e.CreatedAt.Before(from) && e.CreatedAt.Before(to)
	})
	return int64(len(all)), nil
}

func (r *memRepo) DeleteByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.byID {
		if e.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string, dst interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
}

func (c *memCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
}

type echoSummarizer struct{}

func (echoSummarizer) Summarize(_ context.Context, text string) string {
	return "summary: " + text
}
