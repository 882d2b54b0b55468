package openai

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements token bucket rate limiting for model calls
type RateLimiter struct {
	requestsPerMinute int
	requestsPerDay    int

	mu               sync.Mutex
	minuteTokens     int
	minuteLastRefill time.Time
	dayTokens        int
	dayLastRefill    time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerMinute, requestsPerDay int) *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerDay:    requestsPerDay,
		minuteTokens:      requestsPerMinute,
		minuteLastRefill:  now,
		dayTokens:         requestsPerDay,
		dayLastRefill:     now,
	}
}

// Wait blocks until a request can be made according to rate limits
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.tryConsume() {
			return nil
		}

		waitTime := rl.getWaitTime()
		if waitTime <= 0 {
			continue
		}

		// Wait or return if context is cancelled
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			// Continue to next iteration
		}
	}
}

// tryConsume takes one token from both buckets if available
func (rl *RateLimiter) tryConsume() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillTokens()

	if rl.minuteTokens <= 0 || rl.dayTokens <= 0 {
		return false
	}

	rl.minuteTokens--
	rl.dayTokens--
	return true
}

// refillTokens refills token buckets based on elapsed time, caller holds the lock
func (rl *RateLimiter) refillTokens() {
	now := time.Now()

	if now.Sub(rl.minuteLastRefill) >= time.Minute {
		rl.minuteTokens = rl.requestsPerMinute
		rl.minuteLastRefill = now
	}

	if now.Sub(rl.dayLastRefill) >= 24*time.Hour {
		rl.dayTokens = rl.requestsPerDay
		rl.dayLastRefill = now
	}
}

// getWaitTime calculates how long to wait before the next attempt
func (rl *RateLimiter) getWaitTime() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	minuteWait := time.Duration(0)
	if rl.minuteTokens <= 0 {
		minuteWait = time.Minute - now.Sub(rl.minuteLastRefill)
	}

	dayWait := time.Duration(0)
	if rl.dayTokens <= 0 {
		dayWait = 24*time.Hour - now.Sub(rl.dayLastRefill)
	}

	if dayWait > minuteWait {
		return dayWait
	}
	return minuteWait
}

// GetStats returns current token counts for both buckets
func (rl *RateLimiter) GetStats() (minuteTokens, dayTokens int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillTokens()
	return rl.minuteTokens, rl.dayTokens
}
