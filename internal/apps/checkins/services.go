package checkins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/streak"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/validation"
)

var (
	ErrInvalidCheckIn     = errors.New("invalid check-in")
	ErrCheckInExists      = errors.New("a check-in already exists for today")
	ErrCheckInLocked      = errors.New("only today's check-in can be edited")
	ErrCheckInNotFound    = errors.New("check-in not found")
	ErrNoPositiveMemories = errors.New("no positive check-ins with reflections yet")
	ErrUnknownUser        = errors.New("user no longer exists")
)

const (
	maxReflections     = 3
	encouragementDays  = 10
	encouragementItems = 10
)

// EntryCounter reports how many journal entries a user wrote on a day.
type EntryCounter interface {
	CountOn(ctx context.Context, userID uuid.UUID, day calendar.Date) (int64, error)
}

type CheckInService struct {
	repo       Repository
	rater      ai.RatingProvider
	encourager ai.EncouragementProvider
	clock      *calendar.Clock
	entries    EntryCounter
	shuffle    func(n int, swap func(i, j int))
}

// NewCheckInService wires the service. entries may be nil, in which case the
// dashboard reports zero journal entries.
func NewCheckInService(repo Repository, rater ai.RatingProvider, encourager ai.EncouragementProvider,
	clock *calendar.Clock, entries EntryCounter) *CheckInService {
	return &CheckInService{
		repo:       repo,
		rater:      rater,
		encourager: encourager,
		clock:      clock,
		entries:    entries,
		shuffle:    rand.Shuffle,
	}
}

type answers struct {
	mood      mood.Mood
	emotions  mood.Tallies
	lessons   *string
	learnings []string
	memories  []string
}

func parseAnswers(req interface{}, rawMood string, rawEmotions map[string]int, lessons *string, learnings, memories []string) (*answers, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCheckIn, err)
	}
	m, err := mood.ParseMood(rawMood)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCheckIn, err)
	}
	tallies, err := mood.TalliesFromMap(rawEmotions)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCheckIn, err)
	}

	a := &answers{mood: m, emotions: tallies}
	if lessons != nil {
		if s := validation.SanitizeText(*lessons); s != "" {
			a.lessons = &s
		}
	}
	if learnings != nil {
		a.learnings = validation.SanitizeList(learnings)
	}
	if memories != nil {
		a.memories = validation.SanitizeList(memories)
	}
	return a, nil
}

func (s *CheckInService) rate(ctx context.Context, a *answers) *int {
	rating := s.rater.Rate(ctx, ai.RatingInput{
		Mood:           a.mood,
		Emotions:       a.emotions,
		LessonsLearned: derefString(a.lessons),
		Learnings:      a.learnings,
	})
	return &rating
}

// Create stores today's check-in. The AI rating is best effort and never
// blocks the write.
func (s *CheckInService) Create(ctx context.Context, userID uuid.UUID, req CreateCheckInRequest) (*CreateCheckInResponse, error) {
	a, err := parseAnswers(req, req.OverallMood, req.Emotions, req.LessonsLearned, req.Learnings, req.Memories)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()

	// Skip the AI call for an obvious duplicate. The insert itself is the real guard.
	if _, err := s.repo.FindByDate(ctx, userID, today); err == nil {
		metrics.CheckInConflicts.WithLabelValues("exists").Inc()
		return nil, ErrCheckInExists
	} else if !errors.Is(err, ErrCheckInNotFound) {
		return nil, err
	}

	ci := &CheckIn{
		ID:             uuid.New(),
		UserID:         userID,
		CheckDate:      today,
		OverallMood:    a.mood,
		Emotions:       datatypes.NewJSONType(a.emotions),
		LessonsLearned: a.lessons,
		OverallRating:  s.rate(ctx, a),
	}
	ci.Learnings = newLearnings(ci.ID, userID, a.learnings)
	ci.Memories = newMemories(ci.ID, userID, a.memories)

	if err := s.repo.Create(ctx, ci); err != nil {
		if errors.Is(err, ErrCheckInExists) {
			metrics.CheckInConflicts.WithLabelValues("exists").Inc()
		}
		return nil, err
	}
	metrics.CheckInsCreated.WithLabelValues(string(ci.OverallMood)).Inc()
	slog.Info("check-in created", "action", "checkin_create", "user_id", userID.String(),
		"date", today.String(), "mood", string(ci.OverallMood))

	resp := &CreateCheckInResponse{CheckIn: ci, Celebrate: mood.IsPositive(ci.OverallMood)}
	if resp.Celebrate {
		resp.CelebrationMS = CelebrationMS
	}
	return resp, nil
}

// Update rewrites a check-in owned by userID, but only on the day it belongs to.
func (s *CheckInService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateCheckInRequest) (*CheckIn, error) {
	a, err := parseAnswers(req, req.OverallMood, req.Emotions, req.LessonsLearned, req.Learnings, req.Memories)
	if err != nil {
		return nil, err
	}

	ci, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !s.clock.IsToday(ci.CheckDate) {
		metrics.CheckInConflicts.WithLabelValues("locked").Inc()
		return nil, ErrCheckInLocked
	}

	ci.OverallMood = a.mood
	ci.Emotions = datatypes.NewJSONType(a.emotions)
	ci.LessonsLearned = a.lessons
	if a.learnings != nil {
		ci.Learnings = newLearnings(ci.ID, userID, a.learnings)
	}
	if a.memories != nil {
		ci.Memories = newMemories(ci.ID, userID, a.memories)
	}
	ci.OverallRating = s.rate(ctx, &answers{
		mood:      ci.OverallMood,
		emotions:  a.emotions,
		lessons:   ci.LessonsLearned,
		learnings: ci.LearningTexts(),
	})

	if err := s.repo.Update(ctx, ci, a.learnings != nil, a.memories != nil); err != nil {
		return nil, err
	}
	slog.Info("check-in updated", "action", "checkin_update", "user_id", userID.String(), "check_in_id", id.String())
	return ci, nil
}

func (s *CheckInService) GetByID(ctx context.Context, userID, id uuid.UUID) (*CheckIn, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *CheckInService) GetByDate(ctx context.Context, userID uuid.UUID, day calendar.Date) (*CheckIn, error) {
	return s.repo.FindByDate(ctx, userID, day)
}

func (s *CheckInService) GetToday(ctx context.Context, userID uuid.UUID) (*CheckIn, error) {
	return s.repo.FindByDate(ctx, userID, s.clock.Today())
}

// List returns the user's check-ins, newest day first.
func (s *CheckInService) List(ctx context.Context, userID uuid.UUID) ([]CheckIn, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []CheckIn{}
	}
	return list, nil
}

// Dashboard derives streak, current mood and support state from the history.
func (s *CheckInService) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	days := make([]calendar.Date, len(list))
	var todayCI, recent *CheckIn
	for i := range list {
		days[i] = list[i].CheckDate
		switch {
		case list[i].CheckDate.Equal(today):
			todayCI = &list[i]
		case list[i].CheckDate.Before(today) && recent == nil:
			recent = &list[i]
		}
	}

	n := streak.Calculate(days, today)
	d := &Dashboard{
		Date:           today,
		Streak:         n,
		StreakTier:     string(streak.TierFor(n)),
		CheckedInToday: todayCI != nil,
		Today:          todayCI,
		TotalCheckIns:  len(list),
	}

	if m, ok := mood.Resolve(moodOf(todayCI), moodOf(recent)); ok {
		d.CurrentMood = &m
		d.NeedsSupport = mood.NeedsSupport(m)
	}

	if s.entries != nil {
		count, err := s.entries.CountOn(ctx, userID, today)
		if err != nil {
			slog.Warn("journal count unavailable", "action", "dashboard", "user_id", userID.String(), "error", err)
		} else {
			d.TodayJournalEntries = count
		}
	}
	return d, nil
}

// SupportReflections samples up to three past lessons, without replacement.
func (s *CheckInService) SupportReflections(ctx context.Context, userID uuid.UUID) ([]Reflection, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	pool := make([]Reflection, 0, len(list))
	for _, ci := range list {
		if text := strings.TrimSpace(ci.Lessons()); text != "" {
			pool = append(pool, Reflection{CheckInID: ci.ID, Date: ci.CheckDate, Mood: ci.OverallMood, Text: text})
		}
	}
	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > maxReflections {
		pool = pool[:maxReflections]
	}
	return pool, nil
}

// PerspectiveShift picks one random good day that has something to reread.
func (s *CheckInService) PerspectiveShift(ctx context.Context, userID uuid.UUID) (*Perspective, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var pool []*CheckIn
	for i := range list {
		if mood.IsPositive(list[i].OverallMood) && list[i].HasReflection() {
			pool = append(pool, &list[i])
		}
	}
	if len(pool) == 0 {
		return nil, ErrNoPositiveMemories
	}
	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	ci := pool[0]
	return &Perspective{
		CheckInID:      ci.ID,
		Date:           ci.CheckDate,
		Mood:           ci.OverallMood,
		LessonsLearned: ci.Lessons(),
		Learnings:      ci.LearningTexts(),
		Memories:       ci.MemoryTexts(),
	}, nil
}

// Encouragement writes a supportive message from the last good days. The
// message is always present; the AI failing only changes its wording.
func (s *CheckInService) Encouragement(ctx context.Context, userID uuid.UUID) (*EncouragementResponse, error) {
	positive, err := s.repo.ListPositive(ctx, userID, encouragementDays)
	if err != nil {
		return nil, err
	}

	var moments, learnings []string
	for _, ci := range positive {
		moments = append(moments, ci.MemoryTexts()...)
		learnings = append(learnings, ci.LearningTexts()...)
	}
	if len(moments) > encouragementItems {
		moments = moments[:encouragementItems]
	}
	if len(learnings) > encouragementItems {
		learnings = learnings[:encouragementItems]
	}

	msg := s.encourager.Encourage(ctx, ai.EncouragementInput{
		GoodDays:        len(positive),
		PositiveMoments: moments,
		Learnings:       learnings,
	})
	return &EncouragementResponse{Message: msg, GoodDays: len(positive)}, nil
}

// Memories lists check-ins with lessons or learnings, optionally narrowed by
// mood and a case-insensitive substring of the lesson or learning text.
func (s *CheckInService) Memories(ctx context.Context, userID uuid.UUID, f MemoryFilter) ([]CheckIn, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]CheckIn, 0, len(list))
	for _, ci := range list {
		if !ci.HasReflection() {
			continue
		}
		if f.Mood != nil && ci.OverallMood != *f.Mood {
			continue
		}
		if q != "" && !matches(&ci, q) {
			continue
		}
		out = append(out, ci)
	}
	return out, nil
}

// Purge deletes every check-in the user owns.
func (s *CheckInService) Purge(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return s.repo.DeleteByUser(ctx, tx, userID)
}

func matches(ci *CheckIn, q string) bool {
	if strings.Contains(strings.ToLower(ci.Lessons()), q) {
		return true
	}
	for _, l := range ci.Learnings {
		if strings.Contains(strings.ToLower(l.Content), q) {
			return true
		}
	}
	return false
}

func moodOf(ci *CheckIn) *mood.Mood {
	if ci == nil {
		return nil
	}
	m := ci.OverallMood
	return &m
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
