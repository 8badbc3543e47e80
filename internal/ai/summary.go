package ai

import (
	"context"
	"strings"
	"unicode/utf8"
)

const excerptRunes = 280

// Summarizer condenses free text. It never fails.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

const summarySystem = "You are a professional writer. You write simple, clear, and concise content."

// Summarize asks for a 3-5 sentence summary and falls back to an excerpt.
func (a *Assistant) Summarize(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	out, ok := a.complete(ctx, "summary", summarySystem,
		"Summarize the following journal entry in 3-5 sentences: "+text)
	if !ok {
		return Excerpt(text, excerptRunes)
	}
	return out
}

// Excerpt cuts text to at most n runes on a word boundary and marks the cut.
func Excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:n])
	if runes[n] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}
