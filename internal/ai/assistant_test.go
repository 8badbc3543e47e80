package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/mood"
)

type fakeCompleter struct {
	out        string
	err        error
	calls      int
	lastTask   string
	lastPrompt string
}

func (f *fakeCompleter) Complete(_ context.Context, task, _, prompt string) (string, error) {
	f.calls++
	f.lastTask = task
	f.lastPrompt = prompt
	return f.out, f.err
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"42", 42, true},
		{"  73\n", 73, true},
		{"0", 0, true},
		{"100", 100, true},
		{"150", 100, true},
		{"-10", 0, true},
		{"87.5abc", NeutralRating, false},
		{"87.5", NeutralRating, false},
		{"", NeutralRating, false},
		{"eighty", NeutralRating, false},
		{"99999999999999999999", 100, true},
		{"-99999999999999999999", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseRating(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseRating(%q) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRate(t *testing.T) {
	in := RatingInput{Mood: mood.Good, Emotions: mood.Tallies{mood.Happy: 2}}

	tests := []struct {
		name string
		out  string
		err  error
		want int
	}{
		{"plain number", "81", nil, 81},
		{"clamped high", "150", nil, 100},
		{"clamped low", "-10", nil, 0},
		{"garbage", "87.5abc", nil, NeutralRating},
		{"empty", "", nil, NeutralRating},
		{"request failure", "", errors.New("timeout"), NeutralRating},
		{"deadline", "", context.DeadlineExceeded, NeutralRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCompleter{out: tt.out, err: tt.err}
			if got := NewAssistant(fc).Rate(context.Background(), in); got != tt.want {
				t.Errorf("Rate() = %d, want %d", got, tt.want)
			}
			if fc.lastTask != "rating" {
				t.Errorf("task = %q, want rating", fc.lastTask)
			}
		})
	}
}

func TestRateWithoutCompleter(t *testing.T) {
	if got := NewAssistant(nil).Rate(context.Background(), RatingInput{Mood: mood.Okay}); got != NeutralRating {
		t.Errorf("Rate() = %d, want %d", got, NeutralRating)
	}
	var a *Assistant
	if got := a.Rate(context.Background(), RatingInput{Mood: mood.Okay}); got != NeutralRating {
		t.Errorf("nil Assistant Rate() = %d, want %d", got, NeutralRating)
	}
}

func TestRatingPrompt(t *testing.T) {
	p := RatingPrompt(RatingInput{
		Mood:           mood.Bad,
		Emotions:       mood.Tallies{mood.Anxious: 3, mood.Tired: 1, mood.Happy: 0},
		LessonsLearned: "  slow down  ",
		Learnings:      []string{"ask for help", "  "},
	})

	for _, want := range []string{"Overall mood: Bad", "- Anxious: 3", "- Tired: 1", "Reflection: slow down", "- ask for help", "only a number"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "Happy") {
		t.Errorf("prompt should omit zero tallies:\n%s", p)
	}
	if strings.Index(p, "Anxious") > strings.Index(p, "Tired") {
		t.Errorf("emotions should be ordered by count:\n%s", p)
	}
}

func TestEncourage(t *testing.T) {
	in := EncouragementInput{
		GoodDays:        2,
		PositiveMoments: []string{"beach walk", ""},
		Learnings:       []string{"rest matters"},
	}

	fc := &fakeCompleter{out: "You've got this."}
	if got := NewAssistant(fc).Encourage(context.Background(), in); got != "You've got this." {
		t.Errorf("Encourage() = %q", got)
	}
	for _, want := range []string{"2 good days", "• beach walk", "• rest matters"} {
		if !strings.Contains(fc.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	failing := &fakeCompleter{err: errors.New("down")}
	if got := NewAssistant(failing).Encourage(context.Background(), in); got != FallbackEncouragement {
		t.Errorf("Encourage() on failure = %q, want fallback", got)
	}
}

func TestEncouragementPromptCapsLists(t *testing.T) {
	moments := make([]string, 15)
	for i := range moments {
		moments[i] = "moment"
	}
	p := EncouragementPrompt(EncouragementInput{PositiveMoments: moments})
	if got := strings.Count(p, "• moment"); got != maxMoments {
		t.Errorf("prompt lists %d moments, want %d", got, maxMoments)
	}
	if strings.Contains(p, "learnings they've gained") {
		t.Error("empty learnings section should be omitted")
	}
}

func TestSummarize(t *testing.T) {
	fc := &fakeCompleter{out: "A calm day."}
	if got := NewAssistant(fc).Summarize(context.Background(), "I walked and read."); got != "A calm day." {
		t.Errorf("Summarize() = %q", got)
	}

	if got := NewAssistant(fc).Summarize(context.Background(), "   "); got != "" {
		t.Errorf("Summarize(blank) = %q, want empty", got)
	}

	long := strings.Repeat("word ", 100)
	failing := &fakeCompleter{err: errors.New("down")}
	got := NewAssistant(failing).Summarize(context.Background(), long)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) > excerptRunes+1 {
		t.Errorf("fallback excerpt = %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{"short text", 50, "short text"},
		{"collapse   inner\n\nspace", 50, "collapse inner space"},
		{"one two three four", 10, "one two…"},
		{"héllo wörld again", 11, "héllo wörld…"},
	}
	for _, tt := range tests {
		if got := Excerpt(tt.text, tt.n); got != tt.want {
			t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
		}
	}
}
