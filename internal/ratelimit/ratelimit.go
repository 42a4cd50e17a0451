// Package ratelimit throttles enrollment submissions per client IP with a
// sliding window. Memory and Redis backends share the same contract.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds
}

// Store counts hits per key within a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Config bounds submissions per client. A zero Limit disables the limiter.
type Config struct {
	Limit  int
	Window time.Duration
}

func (c Config) Enabled() bool {
	return c.Limit > 0 && c.Window > 0
}

func retryAfterSeconds(allowed bool, resetAt, now time.Time) int {
	if allowed {
		return 0
	}
	seconds := int(resetAt.Sub(now).Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}
