// Package ratelimit provides domain types and interfaces for rate limiting.
package ratelimit

import (
	"context"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	// Enabled turns limiting on. A disabled limiter admits everything and
	// keeps no state.
	Enabled bool
	// MaxRequests is the maximum number of requests admitted in the window.
	MaxRequests int
	// Window is the length of the trailing window.
	Window time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool
	// Remaining is the number of requests remaining in the current window.
	Remaining int
	// ResetAt is when the oldest admitted request leaves the window.
	ResetAt time.Time
	// RetryAfter is the duration to wait before retrying (only set when not allowed).
	RetryAfter time.Duration
}

// Limiter is the interface for rate limiting implementations.
type Limiter interface {
	// Allow checks if a request identified by key is allowed under the rate limit.
	Allow(ctx context.Context, key string) (*Result, error)

	// Close releases any resources held by the limiter.
	Close() error
}

// DefaultConfig returns the default creation limit: 100 requests per hour.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		MaxRequests: 100,
		Window:      time.Hour,
	}
}
