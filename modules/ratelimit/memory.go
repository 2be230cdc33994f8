package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/url-shortener/domain/ratelimit"
)

// MemoryLimiter implements a sliding window log limiter in process memory.
// Each client keeps the timestamps of its admitted requests that are still
// inside the window.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	config  ratelimit.Config
	now     func() time.Time

	janitorStop chan struct{}
	janitorDone chan struct{}
}

// MemoryOption configures a MemoryLimiter.
type MemoryOption func(*MemoryLimiter)

// WithClock overrides the limiter's time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) {
		l.now = now
	}
}

// NewMemoryLimiter creates a new in-memory sliding window limiter.
func NewMemoryLimiter(config ratelimit.Config, opts ...MemoryOption) (*MemoryLimiter, error) {
	if config.MaxRequests < 1 {
		return nil, fmt.Errorf("max requests must be positive, got %d", config.MaxRequests)
	}
	if config.Window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %s", config.Window)
	}

	l := &MemoryLimiter{
		windows: make(map[string][]time.Time),
		config:  config,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow prunes timestamps that left the window, then admits and records the
// request if fewer than MaxRequests remain. Rejected requests are not recorded.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (*ratelimit.Result, error) {
	now := l.now()
	cutoff := now.Add(-l.config.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := pruneBefore(l.windows[key], cutoff)

	if len(stamps) >= l.config.MaxRequests {
		l.windows[key] = stamps
		resetAt := stamps[0].Add(l.config.Window)
		return &ratelimit.Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	stamps = append(stamps, now)
	l.windows[key] = stamps
	return &ratelimit.Result{
		Allowed:   true,
		Remaining: l.config.MaxRequests - len(stamps),
		ResetAt:   stamps[0].Add(l.config.Window),
	}, nil
}

// pruneBefore drops timestamps at or before cutoff in place.
func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	n := copy(stamps, stamps[i:])
	return stamps[:n]
}

// Cleanup forgets clients whose newest request has left the window.
func (l *MemoryLimiter) Cleanup() int {
	cutoff := l.now().Add(-l.config.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, stamps := range l.windows {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Clients returns the number of clients with tracked windows.
func (l *MemoryLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// StartJanitor runs Cleanup every interval until Close.
func (l *MemoryLimiter) StartJanitor(interval time.Duration) {
	if interval <= 0 || l.janitorStop != nil {
		return
	}
	l.janitorStop = make(chan struct{})
	l.janitorDone = make(chan struct{})

	go func() {
		defer close(l.janitorDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-l.janitorStop:
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}

// Close stops the janitor, if one is running.
func (l *MemoryLimiter) Close() error {
	if l.janitorStop != nil {
		close(l.janitorStop)
		<-l.janitorDone
		l.janitorStop = nil
	}
	return nil
}

// Config returns the limiter's configuration.
func (l *MemoryLimiter) Config() ratelimit.Config {
	return l.config
}
