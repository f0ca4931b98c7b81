// Package ratelimiter paces calls against external provider quotas.
package ratelimiter

import "time"

// RateLimiterInterface limits how often an operation may run.
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// FixedDelayLimiter enforces a minimum gap between successive calls.
// The first call passes immediately; later calls sleep out whatever
// remains of the gap since the previous one.
type FixedDelayLimiter struct {
	gap  time.Duration
	last time.Time
}

// NewFixedDelayLimiter creates a limiter with the given minimum gap.
func NewFixedDelayLimiter(gap time.Duration) *FixedDelayLimiter {
	return &FixedDelayLimiter{gap: gap}
}

// WaitIfNeeded blocks until at least the configured gap has passed
// since the previous call.
func (rl *FixedDelayLimiter) WaitIfNeeded() {
	if !rl.last.IsZero() {
		if sleep := rl.gap - time.Since(rl.last); sleep > 0 {
			time.Sleep(sleep)
		}
	}
	rl.last = time.Now()
}
