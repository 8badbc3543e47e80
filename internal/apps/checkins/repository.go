package checkins

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/session"
)

// Repository is the check-in store. Every read is scoped to one user.
type Repository interface {
	// Create inserts the check-in with its learnings and memories. It returns
	// ErrCheckInExists when the user already has one for that day.
	Create(ctx context.Context, ci *CheckIn) error
	// Update rewrites the answers and replaces the children that are non-nil.
	Update(ctx context.Context, ci *CheckIn, replaceLearnings, replaceMemories bool) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*CheckIn, error)
	FindByDate(ctx context.Context, userID uuid.UUID, day calendar.Date) (*CheckIn, error)
	// ListByUser returns every check-in, newest day first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]CheckIn, error)
	// ListPositive returns up to limit Great/Good check-ins, newest day first.
	ListPositive(ctx context.Context, userID uuid.UUID, limit int) ([]CheckIn, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Learnings", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Memories", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *GormRepository) Create(ctx context.Context, ci *CheckIn) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The unique (user_id, check_date) index decides; no read-then-insert.
		res := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "check_date"}},
				DoNothing: true,
			}).
			Create(ci)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCheckInExists
		}

		if len(ci.Learnings) > 0 {
			if err := tx.Create(&ci.Learnings).Error; err != nil {
				return fmt.Errorf("create learnings: %w", err)
			}
		}
		if len(ci.Memories) > 0 {
			if err := tx.Create(&ci.Memories).Error; err != nil {
				return fmt.Errorf("create memories: %w", err)
			}
		}
		return nil
	})
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrCheckInExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrUnknownUser
	}
	return err
}

func (r *GormRepository) Update(ctx context.Context, ci *CheckIn, replaceLearnings, replaceMemories bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&CheckIn{}).
			Where("id = ? AND user_id = ?", ci.ID, ci.UserID).
			Updates(map[string]interface{}{
				"overall_mood":    ci.OverallMood,
				"emotions":        ci.Emotions,
				"lessons_learned": ci.LessonsLearned,
				"overall_rating":  ci.OverallRating,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCheckInNotFound
		}

		if replaceLearnings {
			if err := tx.Where("check_in_id = ?", ci.ID).Delete(&Learning{}).Error; err != nil {
				return err
			}
			if len(ci.Learnings) > 0 {
				if err := tx.Create(&ci.Learnings).Error; err != nil {
					return err
				}
			}
		}
		if replaceMemories {
			if err := tx.Where("check_in_id = ?", ci.ID).Delete(&Memory{}).Error; err != nil {
				return err
			}
			if len(ci.Memories) > 0 {
				if err := tx.Create(&ci.Memories).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *GormRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*CheckIn, error) {
	var ci CheckIn
	err := r.db.WithContext(ctx).Scopes(session.ForUser(userID), withChildren).
		First(&ci, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCheckInNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

func (r *GormRepository) FindByDate(ctx context.Context, userID uuid.UUID, day calendar.Date) (*CheckIn, error) {
	var ci CheckIn
	err := r.db.WithContext(ctx).Scopes(session.ForUser(userID), withChildren).
		First(&ci, "check_date = ?", day).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCheckInNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]CheckIn, error) {
	var out []CheckIn
	err := r.db.WithContext(ctx).Scopes(session.ForUser(userID), withChildren).
		Order("check_date DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepository) ListPositive(ctx context.Context, userID uuid.UUID, limit int) ([]CheckIn, error) {
	var out []CheckIn
	err := r.db.WithContext(ctx).Scopes(session.ForUser(userID), withChildren).
		Where("overall_mood IN ?", []mood.Mood{mood.Great, mood.Good}).
		Order("check_date DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *GormRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	tx = tx.WithContext(ctx)
	if err := tx.Where("user_id = ?", userID).Delete(&Learning{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", userID).Delete(&Memory{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).Delete(&CheckIn{}).Error
}
