package storage

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter backed by Redis. It guards the
// all-tenants email scan, which reconnects per tenant and must never become a
// hot path.
type RateLimiter struct {
	redis  *RedisClient
	prefix string
	limit  int
	window time.Duration
}

// NewRateLimiter creates a rate limiter allowing limit events per window.
func NewRateLimiter(redis *RedisClient, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redis,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow reports whether another event is permitted for key within the current
// window. Errors deny: if Redis is unreachable the guarded path stays closed.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	fullKey := fmt.Sprintf("%sratelimit:%s", l.prefix, key)

	count, err := l.redis.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.redis.client.Expire(ctx, fullKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return count <= int64(l.limit), nil
}
