package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "oauth_state:"

// StateStore keeps OAuth state values between the redirect and the callback.
// Consume succeeds at most once per saved state.
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}

// NewStateStore uses Redis when a client is configured so every instance
// sees the same states, and process memory otherwise.
func NewStateStore(client *redis.Client) StateStore {
	if client == nil {
		return NewMemoryStateStore()
	}
	return &RedisStateStore{client: client}
}

type RedisStateStore struct {
	client *redis.Client
}

func (s *RedisStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, stateKeyPrefix+state, "1", ttl).Err()
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	err := s.client.GetDel(ctx, stateKeyPrefix+state).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStateStore) Save(_ context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(ttl)
	return nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return !s.now().After(exp), nil
}
