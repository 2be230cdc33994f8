package shortener

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateDestinationURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https url", "https://example.com/some/path?q=1", false},
		{"http url", "http://example.com", false},
		{"uppercase scheme", "HTTPS://example.com", false},
		{"empty", "", true},
		{"no scheme", "example.com/path", true},
		{"ftp scheme", "ftp://example.com/file", true},
		{"javascript scheme", "javascript:alert(1)", true},
		{"missing host", "https:///path", true},
		{"too long", "https://example.com/" + strings.Repeat("a", maxURLLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDestinationURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDestinationURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidURL) {
				t.Errorf("error %v does not wrap ErrInvalidURL", err)
			}
		})
	}
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *time.Time
		wantErr bool
	}{
		{
			name: "empty means no expiry",
			raw:  "",
		},
		{
			name: "utc designator",
			raw:  "2030-01-02T03:04:05Z",
			want: ptr(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)),
		},
		{
			name: "offset is normalized to utc",
			raw:  "2030-01-02T05:04:05+02:00",
			want: ptr(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)),
		},
		{
			name: "no zone is read as utc",
			raw:  "2030-01-02T03:04:05",
			want: ptr(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)),
		},
		{
			name: "date only",
			raw:  "2030-01-02",
			want: ptr(time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "not a date",
			raw:     "tomorrow",
			wantErr: true,
		},
		{
			name:    "wrong order",
			raw:     "02-01-2030",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpiry(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidExpiry) {
					t.Fatalf("ParseExpiry(%q) error = %v, want ErrInvalidExpiry", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseExpiry(%q) unexpected error: %v", tt.raw, err)
			}
			if tt.want == nil {
				if got != nil {
					t.Errorf("ParseExpiry(%q) = %v, want nil", tt.raw, got)
				}
				return
			}
			if got == nil || !got.Equal(*tt.want) {
				t.Errorf("ParseExpiry(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidateCreateRequest(t *testing.T) {
	if _, err := ValidateCreateRequest("https://example.com", "", ""); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	if _, err := ValidateCreateRequest("not a url", "", ""); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}
	if _, err := ValidateCreateRequest("https://example.com", "bad alias!", ""); !errors.Is(err, ErrInvalidShortCode) {
		t.Errorf("expected ErrInvalidShortCode, got %v", err)
	}
	if _, err := ValidateCreateRequest("https://example.com", "ok", "soon"); !errors.Is(err, ErrInvalidExpiry) {
		t.Errorf("expected ErrInvalidExpiry, got %v", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
