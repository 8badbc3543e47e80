package checkins

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
)

// memRepo is an in-memory Repository with the same uniqueness rule as the
// database index.
type memRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]CheckIn
	reads   int
	creates int
	// deleted users fail writes the way the users foreign key does.
	deleted map[uuid.UUID]bool
}

func newMemRepo() *memRepo {
	return &memRepo{byID: make(map[uuid.UUID]CheckIn), deleted: make(map[uuid.UUID]bool)}
}

func (r *memRepo) Create(_ context.Context, ci *CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleted[ci.UserID] {
		return ErrUnknownUser
	}
	for _, existing := range r.byID {
		if existing.UserID == ci.UserID && existing.CheckDate.Equal(ci.CheckDate) {
			return ErrCheckInExists
		}
	}
	r.creates++
	r.byID[ci.ID] = *ci
	return nil
}

func (r *memRepo) Update(_ context.Context, ci *CheckIn, replaceLearnings, replaceMemories bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[ci.ID]
	if !ok || stored.UserID != ci.UserID {
		return ErrCheckInNotFound
	}
	stored.OverallMood = ci.OverallMood
	stored.Emotions = ci.Emotions
	stored.LessonsLearned = ci.LessonsLearned
	stored.OverallRating = ci.OverallRating
	if replaceLearnings {
		stored.Learnings = ci.Learnings
	}
	if replaceMemories {
		stored.Memories = ci.Memories
	}
	r.byID[ci.ID] = stored
	return nil
}

func (r *memRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	ci, ok := r.byID[id]
	if !ok || ci.UserID != userID {
		return nil, ErrCheckInNotFound
	}
	return &ci, nil
}

func (r *memRepo) FindByDate(_ context.Context, userID uuid.UUID, day calendar.Date) (*CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	for _, ci := range r.byID {
		if ci.UserID == userID && ci.CheckDate.Equal(day) {
			return &ci, nil
		}
	}
	return nil, ErrCheckInNotFound
}

func (r *memRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	var out []CheckIn
	for _, ci := range r.byID {
		if ci.UserID == userID {
			out = append(out, ci)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckDate.After(out[j].CheckDate) })
	return out, nil
}

func (r *memRepo) ListPositive(ctx context.Context, userID uuid.UUID, limit int) ([]CheckIn, error) {
	all, _ := r.ListByUser(ctx, userID)
	var out []CheckIn
	for _, ci := range all {
		if mood.IsPositive(ci.OverallMood) && len(out) < limit {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (r *memRepo) DeleteByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ci := range r.byID {
		if ci.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

// seed stores a check-in directly, bypassing the service.
func (r *memRepo) seed(userID uuid.UUID, day calendar.Date, m mood.Mood, lessons string, learnings ...string) CheckIn {
	ci := CheckIn{ID: uuid.New(), UserID: userID, CheckDate: day, OverallMood: m}
	if lessons != "" {
		ci.LessonsLearned = &lessons
	}
	ci.Learnings = newLearnings(ci.ID, userID, learnings)
	r.mu.Lock()
	r.byID[ci.ID] = ci
	r.mu.Unlock()
	return ci
}

// memCache is a JSON round-tripping Cache, like the Redis one.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
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
		c.deleted = append(c.deleted, k)
	}
}

type fixedRater struct {
	mu    sync.Mutex
	score int
	calls int
	last  ai.RatingInput
}

func (r *fixedRater) Rate(_ context.Context, in ai.RatingInput) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = in
	return r.score
}

type recordingEncourager struct {
	last ai.EncouragementInput
}

func (e *recordingEncourager) Encourage(_ context.Context, in ai.EncouragementInput) string {
	e.last = in
	return "keep going"
}

type fixedCounter int64

func (n fixedCounter) CountOn(context.Context, uuid.UUID, calendar.Date) (int64, error) {
	return int64(n), nil
}
