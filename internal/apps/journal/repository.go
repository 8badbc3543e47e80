package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/session"
)

// Repository stores journal entries. Reads and writes are owner scoped; an
// entry of another user is indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Entry, error)
	// List returns a page of entries, newest first, and the total count.
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, int64, error)
	Search(ctx context.Context, userID uuid.UUID, query string, limit, offset int) ([]Entry, int64, error)
	// CountBetween counts entries created in [from, to).
	CountBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, e *Entry) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrUnknownUser
	}
	return err
}

func (r *GormRepository) Update(ctx context.Context, e *Entry) error {
	res := r.db.WithContext(ctx).Model(&Entry{}).
		Where("id = ? AND user_id = ?", e.ID, e.UserID).
		Updates(map[string]interface{}{"content": e.Content, "mood": e.Mood})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Scopes(session.ForUser(userID)).Delete(&Entry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *GormRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*Entry, error) {
	var e Entry
	err := r.db.WithContext(ctx).Scopes(session.ForUser(userID)).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Entry{}).Scopes(session.ForUser(userID)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []Entry
	err := r.db.WithContext(ctx).Scopes(session.ForUser(userID)).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, total, err
}

func (r *GormRepository) Search(ctx context.Context, userID uuid.UUID, query string, limit, offset int) ([]Entry, int64, error) {
	pattern := "%" + escapeLike(query) + "%"
	match := func(db *gorm.DB) *gorm.DB {
		return db.Scopes(session.ForUser(userID)).
			Where("(content ILIKE ? ESCAPE '\\' OR mood = ?)", pattern, query)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Entry{}).Scopes(match).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []Entry
	err := r.db.WithContext(ctx).Scopes(match).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, total, err
}

func (r *GormRepository) CountBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Entry{}).Scopes(session.ForUser(userID)).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&n).Error
	return n, err
}

func (r *GormRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return tx.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&Entry{}).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

const cacheEntity = "journal"

// CachedRepository caches the first page of the list, the one the journal
// screen opens on. Every write drops it.
type CachedRepository struct {
	Repository
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedRepository(next Repository, c cache.Cache, ttl time.Duration) *CachedRepository {
	if c == nil {
		c = cache.Noop{}
	}
	return &CachedRepository{Repository: next, cache: c, ttl: ttl}
}

type cachedPage struct {
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
}

func listKey(userID uuid.UUID) string { return cache.Key(cacheEntity, userID, "list") }

func (r *CachedRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Entry, int64, error) {
	if limit != DefaultLimit || offset != 0 {
		return r.Repository.List(ctx, userID, limit, offset)
	}

	key := listKey(userID)
	var page cachedPage
	if r.cache.Get(ctx, key, &page) {
		return page.Entries, page.Total, nil
	}
	entries, total, err := r.Repository.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	r.cache.Set(ctx, key, cachedPage{Entries: entries, Total: total}, r.ttl)
	return entries, total, nil
}

func (r *CachedRepository) Create(ctx context.Context, e *Entry) error {
	if err := r.Repository.Create(ctx, e); err != nil {
		return err
	}
	r.cache.Delete(ctx, listKey(e.UserID))
	return nil
}

func (r *CachedRepository) Update(ctx context.Context, e *Entry) error {
	if err := r.Repository.Update(ctx, e); err != nil {
		return err
	}
	r.cache.Delete(ctx, listKey(e.UserID))
	return nil
}

func (r *CachedRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := r.Repository.Delete(ctx, userID, id); err != nil {
		return err
	}
	r.cache.Delete(ctx, listKey(userID))
	return nil
}

func (r *CachedRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if err := r.Repository.DeleteByUser(ctx, tx, userID); err != nil {
		return err
	}
	r.cache.Delete(ctx, listKey(userID))
	return nil
}
