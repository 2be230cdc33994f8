package shortener

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// maxURLLength is the maximum allowed destination URL length.
const maxURLLength = 2048

// expiryLayouts are the accepted ISO 8601 forms. Layouts without a zone are
// read as UTC.
var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ValidateDestinationURL checks that raw is an absolute http or https URL with a host.
func ValidateDestinationURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidURL)
	}
	if len(raw) > maxURLLength {
		return fmt.Errorf("%w: exceeds maximum length of %d characters", ErrInvalidURL, maxURLLength)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// ParseExpiry parses an optional ISO 8601 timestamp. An empty string means
// no expiry. Timestamps without an offset are taken to be UTC.
func ParseExpiry(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range expiryLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidExpiry, raw)
}

// ValidateCreateRequest checks the inputs of a creation request and returns
// the parsed expiry.
func ValidateCreateRequest(longURL, customAlias, expiryDate string) (*time.Time, error) {
	if err := ValidateDestinationURL(longURL); err != nil {
		return nil, err
	}
	if customAlias != "" && !IsValidShortCode(customAlias) {
		return nil, fmt.Errorf("%w: alias must be 1-%d letters, digits, '-' or '_'", ErrInvalidShortCode, MaxAliasLength)
	}
	return ParseExpiry(expiryDate)
}
