package link

import "errors"

// Sentinel errors for short link operations.
var (
	// ErrAliasConflict is returned when a caller-supplied code is already live.
	ErrAliasConflict = errors.New("alias already exists")

	// ErrNotFound is returned when a code does not exist or has expired.
	ErrNotFound = errors.New("short link not found")

	// ErrRateLimited is returned when the client exceeded its creation quota.
	ErrRateLimited = errors.New("rate limit exceeded")
)
