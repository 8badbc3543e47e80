package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/validation"
)

var (
	ErrInvalidEntry  = errors.New("invalid journal entry")
	ErrInvalidSearch = errors.New("search query must be at least 2 characters")
	ErrEntryNotFound = errors.New("journal entry not found")
	ErrUnknownUser   = errors.New("user no longer exists")
)

type JournalService struct {
	repo       Repository
	summarizer ai.Summarizer
	clock      *calendar.Clock
}

func NewJournalService(repo Repository, summarizer ai.Summarizer, clock *calendar.Clock) *JournalService {
	return &JournalService{repo: repo, summarizer: summarizer, clock: clock}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidEntry, msg)
}

func cleanContent(raw string) (string, error) {
	content := validation.SanitizeText(raw)
	if content == "" {
		return "", invalid("content is required")
	}
	if len([]rune(content)) > MaxContentLen {
		return "", invalid(fmt.Sprintf("content must be at most %d characters", MaxContentLen))
	}
	return content, nil
}

func (s *JournalService) Create(ctx context.Context, userID uuid.UUID, req CreateEntryRequest) (*Entry, error) {
	if err := validation.Struct(req); err != nil {
		return nil, invalid(err.Error())
	}
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}
	m, err := mood.ParseMood(req.Mood)
	if err != nil {
		return nil, invalid(err.Error())
	}

	entry := &Entry{
		ID:      uuid.New(),
		UserID:  userID,
		Content: content,
		Mood:    m,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	metrics.JournalEntries.WithLabelValues("create").Inc()
	slog.Info("journal entry created", "action", "journal_create", "user_id", userID.String())
	return entry, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *JournalService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*EntryListResponse, error) {
	limit, offset = normalizePage(limit, offset)
	entries, total, err := s.repo.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return &EntryListResponse{Entries: entries, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *JournalService) Search(ctx context.Context, userID uuid.UUID, query string, limit, offset int) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchQuery {
		return nil, ErrInvalidSearch
	}
	limit, offset = normalizePage(limit, offset)

	entries, total, err := s.repo.Search(ctx, userID, query, limit, offset)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	metrics.JournalEntries.WithLabelValues("search").Inc()
	return &SearchResponse{Entries: entries, Total: total, Query: query, Limit: limit, Offset: offset}, nil
}

func (s *JournalService) Get(ctx context.Context, userID, id uuid.UUID) (*Entry, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *JournalService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateEntryRequest) (*Entry, error) {
	if err := validation.Struct(req); err != nil {
		return nil, invalid(err.Error())
	}
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	entry.Content = content
	if req.Mood != nil && *req.Mood != "" {
		m, err := mood.ParseMood(*req.Mood)
		if err != nil {
			return nil, invalid(err.Error())
		}
		entry.Mood = m
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	metrics.JournalEntries.WithLabelValues("update").Inc()
	return entry, nil
}

func (s *JournalService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	metrics.JournalEntries.WithLabelValues("delete").Inc()
	slog.Info("journal entry deleted", "action", "journal_delete", "user_id", userID.String())
	return nil
}

// Summarize returns a short summary of the entry. When the assistant is
// unavailable it is an excerpt of the entry itself.
func (s *JournalService) Summarize(ctx context.Context, userID, id uuid.UUID) (*SummaryResponse, error) {
	entry, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	metrics.JournalEntries.WithLabelValues("summarize").Inc()
	return &SummaryResponse{EntryID: entry.ID, Summary: s.summarizer.Summarize(ctx, entry.Content)}, nil
}

// CountOn counts the entries written on the given calendar day.
func (s *JournalService) CountOn(ctx context.Context, userID uuid.UUID, day calendar.Date) (int64, error) {
	return s.repo.CountBetween(ctx, userID, s.clock.StartOf(day), s.clock.StartOf(day.AddDays(1)))
}

func (s *JournalService) Purge(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return s.repo.DeleteByUser(ctx, tx, userID)
}
