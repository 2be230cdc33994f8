package shortener

import (
	"context"
	"fmt"

	"github.com/example/url-shortener/domain/link"
	"github.com/go-monolith/mono"
)

// ServiceClientID is charged for create-link requests that carry no client_id.
const ServiceClientID = "service"

// createLink handles the create-link service request. The rate limit is
// checked before anything is validated or stored.
func (m *Module) createLink(ctx context.Context, req CreateLinkRequest, _ *mono.Msg) (LinkResponse, error) {
	clientID := req.ClientID
	if clientID == "" {
		clientID = ServiceClientID
	}
	if !m.service.CheckRateLimit(ctx, clientID) {
		return LinkResponse{}, link.ErrRateLimited
	}

	expiresAt, err := ValidateCreateRequest(req.LongURL, req.CustomAlias, req.ExpiryDate)
	if err != nil {
		return LinkResponse{}, err
	}

	rec, err := m.service.CreateShortLink(ctx, req.LongURL, req.CustomAlias, expiresAt)
	if err != nil {
		return LinkResponse{}, err
	}
	return m.toLinkResponse(rec), nil
}

// resolveLink handles the resolve-link service request. It does not record
// an access; callers that redirect should follow up with their own tracking.
func (m *Module) resolveLink(ctx context.Context, req ShortCodeRequest, _ *mono.Msg) (ResolveResponse, error) {
	if req.ShortCode == "" {
		return ResolveResponse{}, fmt.Errorf("%w: short_code is required", ErrInvalidShortCode)
	}

	rec, err := m.service.ResolveShortLink(ctx, req.ShortCode)
	if err != nil {
		return ResolveResponse{}, err
	}
	return ResolveResponse{LongURL: rec.DestinationURL}, nil
}

// deleteLink handles the delete-link service request.
func (m *Module) deleteLink(ctx context.Context, req ShortCodeRequest, _ *mono.Msg) (DeleteResponse, error) {
	if req.ShortCode == "" {
		return DeleteResponse{}, fmt.Errorf("%w: short_code is required", ErrInvalidShortCode)
	}

	return DeleteResponse{
		ShortCode: req.ShortCode,
		Deleted:   m.service.DeleteShortLink(ctx, req.ShortCode),
	}, nil
}

// getLinkAnalytics handles the get-link-analytics service request.
func (m *Module) getLinkAnalytics(ctx context.Context, req ShortCodeRequest, _ *mono.Msg) (AnalyticsResponse, error) {
	analytics, err := m.service.GetAnalytics(ctx, req.ShortCode)
	if err != nil {
		return AnalyticsResponse{}, err
	}
	return AnalyticsResponse{
		ShortCode:    analytics.Record.Code,
		LongURL:      analytics.Record.DestinationURL,
		TotalClicks:  analytics.Snapshot.TotalClicks,
		RecentClicks: analytics.Snapshot.RecentAccesses,
	}, nil
}

func (m *Module) toLinkResponse(rec link.Record) LinkResponse {
	return LinkResponse{
		ShortCode: rec.Code,
		ShortURL:  m.service.ShortURL(rec.Code),
		LongURL:   rec.DestinationURL,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
}
