package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/metrics"
)

const opTimeout = 2 * time.Second

// RedisCache stores values in Redis.
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedisClient returns a client for addr. The connection is checked once;
// a failed ping is returned so the caller can decide to run without a cache.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, defaultTTL time.Duration) *RedisCache {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &RedisCache{client: client, defaultTTL: defaultTTL}
}

func (c *RedisCache) Get(ctx context.Context, key string, dst interface{}) bool {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache get failed", "action", "cache_get", "key", key, "error", err)
		}
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		slog.Warn("cache decode failed", "action", "cache_get", "key", key, "error", err)
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		return false
	}
	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		slog.Warn("cache set failed", "action", "cache_set", "key", key, "error", err)
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		return
	}
	metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipe := c.client.Pipeline()
	for _, k := range keys {
		pipe.Del(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("cache invalidation failed", "action", "cache_delete", "keys", keys, "error", err)
		metrics.CacheOperations.WithLabelValues("delete", "error").Inc()
		return
	}
	metrics.CacheOperations.WithLabelValues("delete", "ok").Inc()
}
