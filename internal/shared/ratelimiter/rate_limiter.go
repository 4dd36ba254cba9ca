// Package ratelimiter bounds the frequency of vendor API calls.
package ratelimiter

import (
	"log/slog"
	"time"
)

// RateLimiterInterface limits the frequency of operations such as API calls.
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// RateLimiter counts calls inside a sliding reset interval and sleeps once
// the limit is hit. The vendor enforces its limits informally, so staying
// under them is on us.
type RateLimiter struct {
	limit     int
	interval  time.Duration
	count     int
	lastReset time.Time
}

// NewRateLimiter creates a new RateLimiter allowing limit calls per interval.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
	}
}

// WaitIfNeeded blocks until another call is allowed.
func (rl *RateLimiter) WaitIfNeeded() {
	now := time.Now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count > rl.limit {
		sleep := rl.interval - now.Sub(rl.lastReset)
		if sleep > 0 {
			slog.Info("rate limit reached, sleeping", "limit", rl.limit, "sleep", sleep)
			time.Sleep(sleep)
		}
		rl.count = 1
		rl.lastReset = time.Now()
	}
}
