package ratelimit

import (
	"context"

	"github.com/example/url-shortener/domain/ratelimit"
)

// Disabled admits every request and keeps no state.
type Disabled struct{}

// Allow always allows.
func (Disabled) Allow(_ context.Context, _ string) (*ratelimit.Result, error) {
	return &ratelimit.Result{Allowed: true, Remaining: -1}, nil
}

// Close is a no-op.
func (Disabled) Close() error {
	return nil
}
