package checkins

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
)

// CelebrationMS is how long the client plays the celebration for a good day.
const CelebrationMS = 3000

// CheckIn is the structured record of one user's calendar day.
type CheckIn struct {
	ID             uuid.UUID                        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID                        `gorm:"type:uuid;not null;uniqueIndex:idx_check_ins_user_date,priority:1" json:"user_id"`
	CheckDate      calendar.Date                    `gorm:"type:date;not null;uniqueIndex:idx_check_ins_user_date,priority:2" json:"date"`
	OverallMood    mood.Mood                        `gorm:"size:10;not null;index" json:"overall_mood"`
	Emotions       datatypes.JSONType[mood.Tallies] `gorm:"type:jsonb;not null" json:"emotions"`
	LessonsLearned *string                          `gorm:"type:text" json:"lessons_learned,omitempty"`
	OverallRating  *int                             `json:"overall_rating,omitempty"`
	Learnings      []Learning                       `gorm:"foreignKey:CheckInID;constraint:OnDelete:CASCADE" json:"learnings"`
	Memories       []Memory                         `gorm:"foreignKey:CheckInID;constraint:OnDelete:CASCADE" json:"memories"`
	CreatedAt      time.Time                        `json:"created_at"`
	UpdatedAt      time.Time                        `json:"updated_at"`
	User           models.User                      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Learning is one short takeaway recorded with a check-in.
type Learning struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CheckInID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Memory is one moment the user wants to keep from the day.
type Memory struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CheckInID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (CheckIn) TableName() string  { return "check_ins" }
func (Learning) TableName() string { return "check_in_learnings" }
func (Memory) TableName() string   { return "check_in_memories" }

// Lessons returns the trimmed lesson text, empty when unset.
func (c *CheckIn) Lessons() string {
	if c.LessonsLearned == nil {
		return ""
	}
	return *c.LessonsLearned
}

func (c *CheckIn) LearningTexts() []string {
	out := make([]string, len(c.Learnings))
	for i, l := range c.Learnings {
		out[i] = l.Content
	}
	return out
}

func (c *CheckIn) MemoryTexts() []string {
	out := make([]string, len(c.Memories))
	for i, m := range c.Memories {
		out[i] = m.Content
	}
	return out
}

// HasReflection reports whether the check-in carries lesson text or learnings.
func (c *CheckIn) HasReflection() bool {
	return c.Lessons() != "" || len(c.Learnings) > 0
}

func newLearnings(checkInID, userID uuid.UUID, texts []string) []Learning {
	out := make([]Learning, len(texts))
	for i, t := range texts {
		out[i] = Learning{ID: uuid.New(), CheckInID: checkInID, UserID: userID, Position: i, Content: t}
	}
	return out
}

func newMemories(checkInID, userID uuid.UUID, texts []string) []Memory {
	out := make([]Memory, len(texts))
	for i, t := range texts {
		out[i] = Memory{ID: uuid.New(), CheckInID: checkInID, UserID: userID, Position: i, Content: t}
	}
	return out
}

// --- DTOs ---

type CreateCheckInRequest struct {
	OverallMood    string         `json:"overall_mood" validate:"required,mood"`
	Emotions       map[string]int `json:"emotions" validate:"dive,keys,emotion,endkeys,min=0"`
	LessonsLearned *string        `json:"lessons_learned" validate:"omitempty,max=5000"`
	Learnings      []string       `json:"learnings" validate:"max=20,dive,max=500"`
	Memories       []string       `json:"memories" validate:"max=20,dive,max=500"`
}

// UpdateCheckInRequest replaces the day's answers. Nil lists leave the stored
// ones untouched; an empty list clears them.
type UpdateCheckInRequest struct {
	OverallMood    string         `json:"overall_mood" validate:"required,mood"`
	Emotions       map[string]int `json:"emotions" validate:"dive,keys,emotion,endkeys,min=0"`
	LessonsLearned *string        `json:"lessons_learned" validate:"omitempty,max=5000"`
	Learnings      []string       `json:"learnings" validate:"max=20,dive,max=500"`
	Memories       []string       `json:"memories" validate:"max=20,dive,max=500"`
}

type CreateCheckInResponse struct {
	CheckIn       *CheckIn `json:"check_in"`
	Celebrate     bool     `json:"celebrate"`
	CelebrationMS int      `json:"celebration_ms,omitempty"`
}

type CheckInListResponse struct {
	CheckIns []CheckIn `json:"check_ins"`
	Total    int       `json:"total"`
}

type Dashboard struct {
	Date                calendar.Date `json:"date"`
	Streak              int           `json:"streak"`
	StreakTier          string        `json:"streak_tier"`
	CurrentMood         *mood.Mood    `json:"current_mood"`
	NeedsSupport        bool          `json:"needs_support"`
	CheckedInToday      bool          `json:"checked_in_today"`
	Today               *CheckIn      `json:"today_check_in"`
	TotalCheckIns       int           `json:"total_check_ins"`
	TodayJournalEntries int64         `json:"today_journal_entries"`
}

type Reflection struct {
	CheckInID uuid.UUID     `json:"check_in_id"`
	Date      calendar.Date `json:"date"`
	Mood      mood.Mood     `json:"mood"`
	Text      string        `json:"text"`
}

type ReflectionsResponse struct {
	Reflections []Reflection `json:"reflections"`
}

type Perspective struct {
	CheckInID      uuid.UUID     `json:"check_in_id"`
	Date           calendar.Date `json:"date"`
	Mood           mood.Mood     `json:"mood"`
	LessonsLearned string        `json:"lessons_learned,omitempty"`
	Learnings      []string      `json:"learnings"`
	Memories       []string      `json:"memories"`
}

type EncouragementResponse struct {
	Message  string `json:"message"`
	GoodDays int    `json:"good_days"`
}

// MemoryFilter narrows the memories view.
type MemoryFilter struct {
	Mood  *mood.Mood
	Query string
}
