package checkins

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
)

const cacheEntity = "check_ins"

// CachedRepository serves the per-user list and per-day reads from the cache.
// Any write for a user deletes that user's list key and the written day's key.
type CachedRepository struct {
	next  Repository
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedRepository(next Repository, c cache.Cache, ttl time.Duration) *CachedRepository {
	if c == nil {
		c = cache.Noop{}
	}
	return &CachedRepository{next: next, cache: c, ttl: ttl}
}

func listKey(userID uuid.UUID) string { return cache.Key(cacheEntity, userID, "list") }

func dayKey(userID uuid.UUID, day calendar.Date) string {
	return cache.Key(cacheEntity, userID, "day", day.String())
}

func (r *CachedRepository) invalidate(ctx context.Context, userID uuid.UUID, day calendar.Date) {
	r.cache.Delete(ctx, listKey(userID), dayKey(userID, day))
}

func (r *CachedRepository) Create(ctx context.Context, ci *CheckIn) error {
	if err := r.next.Create(ctx, ci); err != nil {
		return err
	}
	r.invalidate(ctx, ci.UserID, ci.CheckDate)
	return nil
}

func (r *CachedRepository) Update(ctx context.Context, ci *CheckIn, replaceLearnings, replaceMemories bool) error {
	if err := r.next.Update(ctx, ci, replaceLearnings, replaceMemories); err != nil {
		return err
	}
	r.invalidate(ctx, ci.UserID, ci.CheckDate)
	return nil
}

func (r *CachedRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*CheckIn, error) {
	return r.next.FindByID(ctx, userID, id)
}

func (r *CachedRepository) FindByDate(ctx context.Context, userID uuid.UUID, day calendar.Date) (*CheckIn, error) {
	key := dayKey(userID, day)
	var ci CheckIn
	if r.cache.Get(ctx, key, &ci) {
		return &ci, nil
	}
	found, err := r.next.FindByDate(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, found, r.ttl)
	return found, nil
}

func (r *CachedRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]CheckIn, error) {
	key := listKey(userID)
	var list []CheckIn
	if r.cache.Get(ctx, key, &list) {
		return list, nil
	}
	list, err := r.next.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, list, r.ttl)
	return list, nil
}

func (r *CachedRepository) ListPositive(ctx context.Context, userID uuid.UUID, limit int) ([]CheckIn, error) {
	return r.next.ListPositive(ctx, userID, limit)
}

// DeleteByUser purges the rows and drops the list key plus every day key the
// user had.
func (r *CachedRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	keys := []string{listKey(userID)}
	if list, err := r.next.ListByUser(ctx, userID); err == nil {
		for _, ci := range list {
			keys = append(keys, dayKey(userID, ci.CheckDate))
		}
	}
	if err := r.next.DeleteByUser(ctx, tx, userID); err != nil {
		return err
	}
	r.cache.Delete(ctx, keys...)
	return nil
}
