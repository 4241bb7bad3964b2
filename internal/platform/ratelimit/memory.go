// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/authgate/internal/platform/constants"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per key.
//
// Idle buckets are dropped by a background sweep that stops when the context
// passed to [NewMemoryLimiter] is cancelled.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
	now     func() time.Time
}

// NewMemoryLimiter allows rps requests per second per key with the given burst.
func NewMemoryLimiter(ctx context.Context, rps float64, burst int) *MemoryLimiter {
	limiter := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}

	go limiter.cleanup(ctx)

	return limiter
}

// Allow takes one token from the key's bucket.
func (limiter *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := limiter.now()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	entry, found := limiter.buckets[key]
	if !found {
		entry = &bucket{limiter: rate.NewLimiter(limiter.rps, limiter.burst)}
		limiter.buckets[key] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return Decision{Allowed: false, RetryAfter: time.Second}, nil
	}

	if wait := reservation.DelayFrom(now); wait > 0 {
		reservation.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: wait}, nil
	}

	return Decision{Allowed: true}, nil
}

func (limiter *MemoryLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.sweep(limiter.now())
		case <-ctx.Done():
			return
		}
	}
}

// sweep removes buckets idle for longer than the client TTL.
func (limiter *MemoryLimiter) sweep(now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for key, entry := range limiter.buckets {
		if now.Sub(entry.lastSeen) > constants.RateLimitClientTTL {
			delete(limiter.buckets, key)
		}
	}
}
