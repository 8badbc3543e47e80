// Package mood holds the closed vocabularies of the check-in model and the
// small rules derived from them.
package mood

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownMood    = errors.New("unknown mood")
	ErrUnknownEmotion = errors.New("unknown emotion")
	ErrNegativeTally  = errors.New("emotion tally must not be negative")
)

// Mood is the five-point overall assessment of a day, best first.
type Mood string

const (
	Great Mood = "Great"
	Good  Mood = "Good"
	Okay  Mood = "Okay"
	Bad   Mood = "Bad"
	Awful Mood = "Awful"
)

// Moods lists every mood in rank order.
var Moods = []Mood{Great, Good, Okay, Bad, Awful}

func ParseMood(s string) (Mood, error) {
	for _, m := range Moods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMood, s)
}

func (m Mood) Valid() bool {
	_, err := ParseMood(string(m))
	return err == nil
}

// Rank is 0 for Great through 4 for Awful, -1 for an invalid mood.
func (m Mood) Rank() int {
	for i, v := range Moods {
		if v == m {
			return i
		}
	}
	return -1
}

// NeedsSupport reports whether the mood should surface the SOS flow.
func NeedsSupport(m Mood) bool {
	return m == Bad || m == Awful
}

// IsPositive reports whether the mood earns the celebration on submit.
func IsPositive(m Mood) bool {
	return m == Great || m == Good
}

// Resolve picks the current mood: today's if there is one, otherwise the most
// recent earlier one. ok is false when neither exists.
func Resolve(today, mostRecent *Mood) (m Mood, ok bool) {
	if today != nil && today.Valid() {
		return *today, true
	}
	if mostRecent != nil && mostRecent.Valid() {
		return *mostRecent, true
	}
	return "", false
}

// Emotion is one of the twelve labels a user can tally during a check-in.
type Emotion string

const (
	Happy      Emotion = "Happy"
	Excited    Emotion = "Excited"
	Grateful   Emotion = "Grateful"
	Relaxed    Emotion = "Relaxed"
	Sad        Emotion = "Sad"
	Anxious    Emotion = "Anxious"
	Angry      Emotion = "Angry"
	Tired      Emotion = "Tired"
	Frustrated Emotion = "Frustrated"
	Confused   Emotion = "Confused"
	Proud      Emotion = "Proud"
	Hopeful    Emotion = "Hopeful"
)

var Emotions = []Emotion{
	Happy, Excited, Grateful, Relaxed, Sad, Anxious,
	Angry, Tired, Frustrated, Confused, Proud, Hopeful,
}

func ParseEmotion(s string) (Emotion, error) {
	for _, e := range Emotions {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEmotion, s)
}

// Tallies counts how often each emotion was felt during a day.
type Tallies map[Emotion]int

// Validate rejects unknown labels and negative counts.
func (t Tallies) Validate() error {
	for e, n := range t {
		if _, err := ParseEmotion(string(e)); err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeTally, e, n)
		}
	}
	return nil
}

// Normalize returns a copy without zero-count entries.
func (t Tallies) Normalize() Tallies {
	out := make(Tallies, len(t))
	for e, n := range t {
		if n > 0 {
			out[e] = n
		}
	}
	return out
}

// TalliesFromMap validates a raw label->count map coming off the wire.
func TalliesFromMap(raw map[string]int) (Tallies, error) {
	t := make(Tallies, len(raw))
	for k, n := range raw {
		e, err := ParseEmotion(k)
		if err != nil {
			return nil, err
		}
		t[e] = n
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t.Normalize(), nil
}

// Count is one emotion with its tally.
type Count struct {
	Emotion Emotion
	Count   int
}

// Sorted returns the non-zero tallies, highest first, ties in label order.
func (t Tallies) Sorted() []Count {
	out := make([]Count, 0, len(t))
	for e, n := range t {
		if n > 0 {
			out = append(out, Count{Emotion: e, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Emotion < out[j].Emotion
	})
	return out
}
