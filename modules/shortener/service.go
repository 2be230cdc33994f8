package shortener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/url-shortener/domain/link"
	"github.com/example/url-shortener/domain/ratelimit"
	"github.com/go-monolith/mono/pkg/types"
)

// AnalyticsReader returns the analytics kept for one incarnation of a code.
type AnalyticsReader interface {
	Snapshot(code, linkID string) (link.Snapshot, bool)
}

// AccessNotifier accepts access events without making the caller wait for
// them to be recorded.
type AccessNotifier interface {
	Notify(code, linkID string, event link.AccessEvent)
}

// Service is the synchronous surface the transports call into. It ties the
// mapping store to analytics and the creation rate limit.
type Service struct {
	store     *Store
	analytics AnalyticsReader
	notifier  AccessNotifier
	limiter   ratelimit.Limiter
	baseURL   string
	now       func() time.Time
	logger    types.Logger
}

// NewService creates a new URL shortener service.
func NewService(
	store *Store,
	analytics AnalyticsReader,
	notifier AccessNotifier,
	limiter ratelimit.Limiter,
	baseURL string,
	logger types.Logger,
) *Service {
	return &Service{
		store:     store,
		analytics: analytics,
		notifier:  notifier,
		limiter:   limiter,
		baseURL:   baseURL,
		now:       time.Now,
		logger:    logger,
	}
}

// Store returns the underlying mapping store.
func (s *Service) Store() *Store {
	return s.store
}

// ShortURL returns the complete short URL for code.
func (s *Service) ShortURL(code string) string {
	return strings.TrimRight(s.baseURL, "/") + "/" + code
}

// CreateShortLink stores destinationURL under alias, or under a generated
// code when alias is empty. Inputs are expected to be validated already.
func (s *Service) CreateShortLink(_ context.Context, destinationURL, alias string, expiresAt *time.Time) (link.Record, error) {
	rec, err := s.store.Create(alias, destinationURL, expiresAt)
	if err != nil {
		return link.Record{}, err
	}

	s.logger.Info("Shortened URL",
		"shortCode", rec.Code,
		"destination", rec.DestinationURL,
		"customAlias", alias != "")
	return rec, nil
}

// ResolveShortLink returns the live record for code, or link.ErrNotFound
// when it does not exist or has expired.
func (s *Service) ResolveShortLink(_ context.Context, code string) (link.Record, error) {
	rec, ok := s.store.Lookup(code)
	if !ok {
		return link.Record{}, fmt.Errorf("%w: %s", link.ErrNotFound, code)
	}
	return rec, nil
}

// NotifyAccess queues an access for the live record behind code and returns
// immediately. An access to a code that is not live is logged and dropped.
func (s *Service) NotifyAccess(code, clientAddress, userAgent, referrer string) {
	rec, ok := s.store.Lookup(code)
	if !ok {
		s.logger.Warn("Dropping access for unknown short code", "shortCode", code)
		return
	}
	s.NotifyRecordAccess(rec, clientAddress, userAgent, referrer)
}

// NotifyRecordAccess queues an access for a record the caller has already
// resolved. The access counts only while that incarnation of the code is
// stored.
func (s *Service) NotifyRecordAccess(rec link.Record, clientAddress, userAgent, referrer string) {
	s.notifier.Notify(rec.Code, rec.ID, link.AccessEvent{
		Timestamp:     s.now().UTC(),
		ClientAddress: clientAddress,
		UserAgent:     userAgent,
		Referrer:      referrer,
	})
}

// GetAnalytics returns the record and analytics snapshot for a live code.
func (s *Service) GetAnalytics(ctx context.Context, code string) (link.Analytics, error) {
	rec, err := s.ResolveShortLink(ctx, code)
	if err != nil {
		return link.Analytics{}, err
	}

	snapshot, ok := s.analytics.Snapshot(rec.Code, rec.ID)
	if !ok {
		// Removed or replaced since the lookup.
		return link.Analytics{}, fmt.Errorf("%w: %s", link.ErrNotFound, code)
	}
	return link.Analytics{Record: rec, Snapshot: snapshot}, nil
}

// DeleteShortLink removes code and its analytics. It reports whether a live
// record was removed.
func (s *Service) DeleteShortLink(_ context.Context, code string) bool {
	deleted := s.store.Delete(code)
	if deleted {
		s.logger.Info("Deleted short link", "shortCode", code)
	}
	return deleted
}

// CheckRateLimit reports whether clientID may create another link now.
// Limiter failures admit the request.
func (s *Service) CheckRateLimit(ctx context.Context, clientID string) bool {
	result, err := s.limiter.Allow(ctx, clientID)
	if err != nil {
		s.logger.Warn("Rate limit check failed, allowing request",
			"clientId", clientID,
			"error", err)
		return true
	}
	if !result.Allowed {
		s.logger.Info("Rate limit exceeded", "clientId", clientID)
	}
	return result.Allowed
}
