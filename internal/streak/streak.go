// Package streak computes the consecutive-day check-in streak shown on the dashboard.
package streak

import (
	"sort"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/calendar"
)

// Tier is the visual intensity of a streak.
type Tier string

const (
	TierEmber Tier = "ember"
	TierFlame Tier = "flame"
	TierBlaze Tier = "blaze"
)

// Calculate returns the number of consecutive calendar days, ending today or
// yesterday, that have at least one check-in. A missed day resets it to zero.
func Calculate(days []calendar.Date, today calendar.Date) int {
	unique := distinctDesc(days)
	if len(unique) == 0 {
		return 0
	}

	latest := unique[0]
	if !latest.Equal(today) && !latest.Equal(today.AddDays(-1)) {
		return 0
	}

	n := 1
	for i := 0; i < len(unique)-1; i++ {
		if unique[i].DaysSince(unique[i+1]) != 1 {
			break
		}
		n++
	}
	return n
}

// TierFor maps a streak length to its tier.
func TierFor(n int) Tier {
	switch {
	case n >= 7:
		return TierBlaze
	case n >= 3:
		return TierFlame
	default:
		return TierEmber
	}
}

func distinctDesc(days []calendar.Date) []calendar.Date {
	seen := make(map[string]struct{}, len(days))
	out := make([]calendar.Date, 0, len(days))
	for _, d := range days {
		if d.IsZero() {
			continue
		}
		key := d.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}
