package ai

import (
	"context"
	"fmt"
	"strings"
)

// FallbackEncouragement is returned whenever the model cannot be reached.
const FallbackEncouragement = "Tough days happen to everyone, and this one does not define you. " +
	"You have had good days before and you will have them again. " +
	"Be gentle with yourself today, rest if you can, and take things one small step at a time."

const (
	maxMoments   = 10
	maxLearnings = 10
)

// EncouragementInput summarises a user's recent good days.
type EncouragementInput struct {
	GoodDays        int
	PositiveMoments []string
	Learnings       []string
}

// EncouragementProvider writes a short supportive message. It never fails.
type EncouragementProvider interface {
	Encourage(ctx context.Context, in EncouragementInput) string
}

const encouragementSystem = "You are a compassionate mental health support assistant."

func (a *Assistant) Encourage(ctx context.Context, in EncouragementInput) string {
	out, ok := a.complete(ctx, "encouragement", encouragementSystem, EncouragementPrompt(in))
	if !ok {
		return FallbackEncouragement
	}
	return out
}

// EncouragementPrompt renders at most ten moments and ten learnings.
func EncouragementPrompt(in EncouragementInput) string {
	var b strings.Builder
	b.WriteString("The user is having a difficult day and needs encouragement.\n\nBased on their history:\n")
	fmt.Fprintf(&b, "- They've had %d good days recently\n", in.GoodDays)

	if moments := firstN(in.PositiveMoments, maxMoments); len(moments) > 0 {
		b.WriteString("- Some positive memories they've recorded:\n")
		for _, m := range moments {
			fmt.Fprintf(&b, "  • %s\n", m)
		}
	}
	if learnings := firstN(in.Learnings, maxLearnings); len(learnings) > 0 {
		b.WriteString("- Important learnings they've gained:\n")
		for _, l := range learnings {
			fmt.Fprintf(&b, "  • %s\n", l)
		}
	}

	b.WriteString(`
Generate a warm, encouraging message (2-3 paragraphs, max 200 words) that:
1. Acknowledges that tough days happen
2. Reminds them of specific positive moments and growth
3. Encourages self-compassion
4. Ends with a gentle, hopeful note

Make it personal by referencing their actual memories and learnings. Be warm but not overly cheerful.`)
	return b.String()
}

func firstN(items []string, n int) []string {
	out := make([]string, 0, min(n, len(items)))
	for _, s := range items {
		if len(out) == n {
			break
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
