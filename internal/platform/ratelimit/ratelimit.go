// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

/*
Package ratelimit implements a sliding-window request counter keyed by client IP.

It is a counting window, not a token bucket: a request is allowed when fewer
than the configured quota of requests have been recorded in the trailing
window. Bursts are smoothed only by the lookback interval, never by a refill
rate.

State is process-local and volatile; losing it on restart is acceptable
because rate limiting is best-effort, not a security boundary.
*/
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/cardfolio/cardfolio/internal/platform/constants"
)

// clientWindow tracks one client's recent request timestamps (FIFO order).
type clientWindow struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// SlidingWindow counts requests per client key over a trailing interval.
//
// # Concurrency
//
// A single coarse mutex guards the window map. Windows are small (at most the
// quota) and operations are O(window size), so finer-grained locking is not
// worth the complexity.
type SlidingWindow struct {
	mu      sync.Mutex
	clients map[string]*clientWindow

	limit  int
	window time.Duration
	now    func() time.Time
}

// New constructs a limiter allowing `limit` requests per client key within
// the trailing [constants.RateLimitWindow].
func New(limit int) *SlidingWindow {
	return &SlidingWindow{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  constants.RateLimitWindow,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Test hook for window-expiry scenarios.
func (limiter *SlidingWindow) WithClock(now func() time.Time) *SlidingWindow {
	limiter.now = now
	return limiter
}

// Allow records the request and reports whether it is within quota.
//
// # Ordering
//
// The check happens BEFORE the append: a rejected request does not count
// against the client's quota, so a client hammering a full window does not
// push its own recovery further into the future.
func (limiter *SlidingWindow) Allow(clientKey string) bool {
	currentTime := limiter.now()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	window, found := limiter.clients[clientKey]
	if !found {
		window = &clientWindow{}
		limiter.clients[clientKey] = window
	}
	window.lastSeen = currentTime

	// Prune timestamps older than the trailing window. Entries are appended
	// in order, so the survivors form a suffix.
	cutoff := currentTime.Add(-limiter.window)
	kept := window.timestamps[:0]
	for _, stamp := range window.timestamps {
		if stamp.After(cutoff) {
			kept = append(kept, stamp)
		}
	}
	window.timestamps = kept

	if len(window.timestamps) >= limiter.limit {
		return false
	}

	window.timestamps = append(window.timestamps, currentTime)
	return true
}

// Len reports how many client keys are currently tracked.
func (limiter *SlidingWindow) Len() int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return len(limiter.clients)
}

// StartJanitor launches a background goroutine that evicts idle client keys,
// preventing unbounded growth of the window map. It stops when ctx is done.
func (limiter *SlidingWindow) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				limiter.evictIdle()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// evictIdle removes clients that have been silent longer than the client TTL.
func (limiter *SlidingWindow) evictIdle() {
	currentTime := limiter.now()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for clientKey, window := range limiter.clients {
		if currentTime.Sub(window.lastSeen) > constants.RateLimitClientTTL {
			delete(limiter.clients, clientKey)
		}
	}
}
