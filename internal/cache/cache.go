// Package cache is the read-through cache used by the repositories. Entries
// are JSON encoded and always deleted on write; a miss or a backend failure
// simply falls through to the database.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cache stores JSON-encodable values by key.
type Cache interface {
	// Get decodes the value under key into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// Key builds "<entity>:<user>:<parts...>".
func Key(entity string, userID uuid.UUID, parts ...string) string {
	var b strings.Builder
	b.WriteString(entity)
	b.WriteByte(':')
	b.WriteString(userID.String())
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) bool           { return false }
func (Noop) Set(context.Context, string, interface{}, time.Duration) {}
func (Noop) Delete(context.Context, ...string)                       {}
