package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nithinag10/gatherly/internal/models"
)

const summaryCacheTTL = 5 * time.Minute

// RedisStore handles Redis operations for rate limiting and caching.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// summaryKey returns the cache key for a chat's summary.
func summaryKey(chatID string) string {
	return fmt.Sprintf("chat:%s:summary", chatID)
}

// rateLimitKey returns the key for a client's rate limit counter.
func rateLimitKey(clientKey string) string {
	return fmt.Sprintf("ratelimit:%s", clientKey)
}

// GetCachedSummary returns a previously cached summary, or nil if absent.
func (s *RedisStore) GetCachedSummary(ctx context.Context, chatID string) (*models.Summary, error) {
	data, err := s.client.Get(ctx, summaryKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var summary models.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// CacheSummary stores a summary with a short TTL. Summaries are expensive
// model calls; a stale-by-minutes answer is acceptable.
func (s *RedisStore) CacheSummary(ctx context.Context, summary *models.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, summaryKey(summary.ChatID), data, summaryCacheTTL).Err()
}

// InvalidateSummary drops the cached summary for a chat.
func (s *RedisStore) InvalidateSummary(ctx context.Context, chatID string) {
	s.client.Del(ctx, summaryKey(chatID))
}

// CheckRateLimit checks if a client has exceeded the rate limit.
func (s *RedisStore) CheckRateLimit(ctx context.Context, clientKey string, limit int) (bool, error) {
	count, err := s.client.Get(ctx, rateLimitKey(clientKey)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return count < limit, nil
}

// IncrementRateLimit increments the rate limit counter.
func (s *RedisStore) IncrementRateLimit(ctx context.Context, clientKey string, window time.Duration) error {
	key := rateLimitKey(clientKey)

	pipe := s.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	_, err := pipe.Exec(ctx)
	return err
}
