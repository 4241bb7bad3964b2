// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit decides whether a client may issue another request.

Two implementations share the [Limiter] interface:

  - [MemoryLimiter]: a token bucket per key, local to the process.
  - [RedisLimiter]: a fixed window counter shared by every replica.
*/
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single [Limiter.Allow] call.
type Decision struct {
	Allowed bool
	// RetryAfter is how long the caller should wait when Allowed is false.
	RetryAfter time.Duration
}

// Limiter admits or rejects one request for the given key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RetryAfterSeconds rounds a wait up to whole seconds, never below one.
func RetryAfterSeconds(wait time.Duration) int {
	seconds := int((wait + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}
