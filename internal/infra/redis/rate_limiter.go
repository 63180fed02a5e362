package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter implements a fixed-window counter per key. Used by the
// HTTP API to keep a runaway client from burning extractor quota.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// ClientRouteKey buckets requests by caller address and route.
func ClientRouteKey(remoteAddr, route string) string {
	return fmt.Sprintf("rate_limit:%s:%s", remoteAddr, route)
}
