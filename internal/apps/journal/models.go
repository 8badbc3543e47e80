package journal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
)

const (
	DefaultLimit   = 20
	MaxLimit       = 100
	MaxContentLen  = 10000
	MinSearchQuery = 2
)

// Entry is a free-form journal note with a mood tag.
type Entry struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_journal_user_created,priority:1" json:"user_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Mood      mood.Mood      `gorm:"size:10;not null" json:"mood"`
	CreatedAt time.Time      `gorm:"index:idx_journal_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	User      models.User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Entry) TableName() string { return "journal_entries" }

// --- DTOs ---

type CreateEntryRequest struct {
	Content string `json:"content" validate:"required,notblank,max=10000"`
	Mood    string `json:"mood" validate:"required,mood"`
}

type UpdateEntryRequest struct {
	Content string  `json:"content" validate:"required,notblank,max=10000"`
	Mood    *string `json:"mood" validate:"omitempty,mood"`
}

type EntryListResponse struct {
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

type SearchResponse struct {
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
	Query   string  `json:"query"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

type SummaryResponse struct {
	EntryID uuid.UUID `json:"entry_id"`
	Summary string    `json:"summary"`
}

type DeleteEntryResponse struct {
	Message string `json:"message"`
}
