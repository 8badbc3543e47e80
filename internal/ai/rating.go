package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
)

const (
	NeutralRating = 50
	MinRating     = 0
	MaxRating     = 100
)

// RatingInput is the day being scored.
type RatingInput struct {
	Mood           mood.Mood
	Emotions       mood.Tallies
	LessonsLearned string
	Learnings      []string
}

// RatingProvider scores a day from 0 to 100. It never fails.
type RatingProvider interface {
	Rate(ctx context.Context, in RatingInput) int
}

const ratingSystem = "You rate how a person's day went on a scale from 0 to 100. " +
	"Respond with only a number."

// Rate asks the model for a score and falls back to NeutralRating when the
// call fails or the answer is not a plain integer.
func (a *Assistant) Rate(ctx context.Context, in RatingInput) int {
	out, ok := a.complete(ctx, "rating", ratingSystem, RatingPrompt(in))
	if !ok {
		return NeutralRating
	}
	n, ok := ParseRating(out)
	if !ok {
		slog.Warn("unparseable AI rating, using fallback", "action", "ai_rating", "raw", out)
		metrics.AIFallback("rating")
	}
	return n
}

// ParseRating reads a base-10 integer after trimming whitespace and clamps it
// to [0,100]. Integers too large for int clamp by sign. Anything else yields
// NeutralRating and false.
func ParseRating(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(s, "-") {
			return MinRating, true
		}
		return MaxRating, true
	}
	if err != nil {
		return NeutralRating, false
	}
	return ClampRating(n), true
}

func ClampRating(n int) int {
	return max(MinRating, min(MaxRating, n))
}

// RatingPrompt renders the day as text. Zero emotion counts are left out.
func RatingPrompt(in RatingInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall mood: %s\n", in.Mood)

	counts := in.Emotions.Sorted()
	if len(counts) > 0 {
		b.WriteString("Emotions felt (with how many times):\n")
		for _, c := range counts {
			fmt.Fprintf(&b, "- %s: %d\n", c.Emotion, c.Count)
		}
	}

	if s := strings.TrimSpace(in.LessonsLearned); s != "" {
		fmt.Fprintf(&b, "Reflection: %s\n", s)
	}

	var learnings []string
	for _, l := range in.Learnings {
		if l = strings.TrimSpace(l); l != "" {
			learnings = append(learnings, l)
		}
	}
	if len(learnings) > 0 {
		b.WriteString("Things learned today:\n")
		for _, l := range learnings {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}

	b.WriteString("\nRate this day from 0 (worst) to 100 (best). Respond with only a number.")
	return b.String()
}
