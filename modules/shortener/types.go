package shortener

import (
	"time"

	"github.com/example/url-shortener/domain/link"
)

// CreateLinkRequest is the request payload of the create-link service.
type CreateLinkRequest struct {
	LongURL     string `json:"long_url"`
	CustomAlias string `json:"custom_alias,omitempty"`
	// ExpiryDate is an ISO 8601 timestamp; empty means never expires.
	ExpiryDate string `json:"expiry_date,omitempty"`
	// ClientID is the identity the creation rate limit is charged to.
	// Requests without one share ServiceClientID.
	ClientID string `json:"client_id,omitempty"`
}

// LinkResponse describes a stored short link.
type LinkResponse struct {
	ShortCode string     `json:"short_code"`
	ShortURL  string     `json:"short_url"`
	LongURL   string     `json:"long_url"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ShortCodeRequest is a request containing only a short code.
type ShortCodeRequest struct {
	ShortCode string `json:"short_code"`
}

// ResolveResponse is the response after resolving a short code.
type ResolveResponse struct {
	LongURL string `json:"long_url"`
}

// DeleteResponse is the response after deleting a short code.
type DeleteResponse struct {
	ShortCode string `json:"short_code"`
	Deleted   bool   `json:"deleted"`
}

// AnalyticsResponse contains the analytics of one short code.
type AnalyticsResponse struct {
	ShortCode    string             `json:"short_code"`
	LongURL      string             `json:"long_url"`
	TotalClicks  uint64             `json:"total_clicks"`
	RecentClicks []link.AccessEvent `json:"recent_clicks"`
}
