// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/authgate/internal/platform/constants"
)

// RedisLimiter counts requests per key in fixed windows stored in Redis.
//
// Keys look like "authgate:ratelimit:<key>:<window>" and expire after two
// windows.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter allows limit requests per key in every window.
func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = constants.RateLimitWindow
	}
	return &RedisLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow increments the counter of the current window.
func (limiter *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := limiter.now()
	slot := now.UnixNano() / int64(limiter.window)
	redisKey := constants.RedisPrefixRateLimit + key + ":" + strconv.FormatInt(slot, 10)

	var count *redis.IntCmd
	_, err := limiter.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, 2*limiter.window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit_redis_incr_failed: %w", err)
	}

	if count.Val() > limiter.limit {
		windowEnd := time.Unix(0, (slot+1)*int64(limiter.window))
		return Decision{Allowed: false, RetryAfter: windowEnd.Sub(now)}, nil
	}

	return Decision{Allowed: true}, nil
}
