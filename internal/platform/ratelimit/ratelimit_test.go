// Copyright (c) 2026 Cardfolio. All rights reserved.
// Author: engineering@cardfolio.app

package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cardfolio/cardfolio/internal/platform/ratelimit"
)

/*
TestSlidingWindow_QuotaEnforced checks that the request after the quota is
rejected while every request up to the quota passes.
*/
func TestSlidingWindow_QuotaEnforced(t *testing.T) {
	limiter := ratelimit.New(5)

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow("10.0.0.1"), "request %d should be allowed", i+1)
	}

	assert.False(t, limiter.Allow("10.0.0.1"))
}

/*
TestSlidingWindow_PerClientIsolation verifies that one client exhausting its
quota does not affect another.
*/
func TestSlidingWindow_PerClientIsolation(t *testing.T) {
	limiter := ratelimit.New(1)

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	assert.True(t, limiter.Allow("10.0.0.2"))
	assert.Equal(t, 2, limiter.Len())
}

/*
TestSlidingWindow_WindowSlides verifies that quota frees up as old requests
age past the trailing window.
*/
func TestSlidingWindow_WindowSlides(t *testing.T) {
	currentTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(2).WithClock(func() time.Time { return currentTime })

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	// 30s later the window is still full.
	currentTime = currentTime.Add(30 * time.Second)
	assert.False(t, limiter.Allow("10.0.0.1"))

	// 61s after the first two requests they have aged out.
	currentTime = currentTime.Add(31 * time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"))
}

/*
TestSlidingWindow_RejectionsDoNotCount checks that rejected requests do not
extend the client's lockout.
*/
func TestSlidingWindow_RejectionsDoNotCount(t *testing.T) {
	currentTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(1).WithClock(func() time.Time { return currentTime })

	assert.True(t, limiter.Allow("10.0.0.1"))

	// Hammer while over quota.
	for i := 0; i < 10; i++ {
		currentTime = currentTime.Add(time.Second)
		assert.False(t, limiter.Allow("10.0.0.1"))
	}

	// 61s after the single allowed request the client recovers, even though
	// it kept retrying in between.
	currentTime = currentTime.Add(51 * time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"))
}
