package shortener

import "errors"

// Validation errors raised before a request reaches the store.
var (
	// ErrInvalidURL is returned when the destination is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidShortCode is returned when a custom alias has an unusable format.
	ErrInvalidShortCode = errors.New("invalid short code")

	// ErrInvalidExpiry is returned when the expiry date cannot be parsed.
	ErrInvalidExpiry = errors.New("invalid expiry date")

	// ErrCodeSpaceExhausted is returned when no free code was found within the attempt budget.
	ErrCodeSpaceExhausted = errors.New("failed to generate a unique short code")
)
