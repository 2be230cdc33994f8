package httpserver

import (
	"time"

	"github.com/example/url-shortener/domain/link"
)

// ShortenRequest is the request body of POST /api/shorten.
type ShortenRequest struct {
	LongURL     string `json:"longUrl"`
	CustomAlias string `json:"customAlias"`
	ExpiryDate  string `json:"expiryDate"`
}

// ShortenResponse is the response body of POST /api/shorten.
type ShortenResponse struct {
	ShortURL  string     `json:"shortUrl"`
	LongURL   string     `json:"longUrl"`
	ShortCode string     `json:"shortCode"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// AnalyticsResponse is the response body of GET /api/analytics/:shortCode.
type AnalyticsResponse struct {
	ShortCode    string             `json:"shortCode"`
	LongURL      string             `json:"longUrl"`
	TotalClicks  uint64             `json:"totalClicks"`
	RecentClicks []link.AccessEvent `json:"recentClicks"`
}

// HealthResponse is the response body of GET /health.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Modules map[string]ModuleHealth `json:"modules"`
}

// ModuleHealth is the health of a single module.
type ModuleHealth struct {
	Healthy bool           `json:"healthy"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}
