package httpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"

	"github.com/example/url-shortener/domain/link"
	"github.com/example/url-shortener/modules/analytics"
	"github.com/example/url-shortener/modules/shortener"
)

// HealthChecker is a module that reports its health.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// Handlers contains HTTP request handlers for URL shortener operations.
type Handlers struct {
	service  *shortener.Service
	summary  func() analytics.Summary
	checkers []HealthChecker
	logger   types.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	service *shortener.Service,
	summary func() analytics.Summary,
	checkers []HealthChecker,
	logger types.Logger,
) *Handlers {
	return &Handlers{
		service:  service,
		summary:  summary,
		checkers: checkers,
		logger:   logger,
	}
}

// ShortenURL handles URL shortening requests (POST /api/shorten).
func (h *Handlers) ShortenURL(c *fiber.Ctx) error {
	var req ShortenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.LongURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "longUrl is required",
		})
	}

	expiresAt, err := shortener.ValidateCreateRequest(req.LongURL, req.CustomAlias, req.ExpiryDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationMessage(err),
		})
	}

	rec, err := h.service.CreateShortLink(c.UserContext(), req.LongURL, req.CustomAlias, expiresAt)
	if err != nil {
		if errors.Is(err, link.ErrAliasConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": fmt.Sprintf("Custom alias '%s' already exists.", req.CustomAlias),
			})
		}
		h.logger.Error("Failed to shorten URL", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to shorten URL",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(ShortenResponse{
		ShortURL:  h.service.ShortURL(rec.Code),
		LongURL:   rec.DestinationURL,
		ShortCode: rec.Code,
		ExpiresAt: rec.ExpiresAt,
	})
}

// validationMessage maps validation errors to client-facing messages.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		return "Invalid URL format."
	case errors.Is(err, shortener.ErrInvalidExpiry):
		return "Invalid expiry date format. Use YYYY-MM-DDTHH:MM:SSZ (ISO 8601)."
	case errors.Is(err, shortener.ErrInvalidShortCode):
		return fmt.Sprintf("Invalid custom alias. Use up to %d letters, digits, '-' or '_'.", shortener.MaxAliasLength)
	default:
		return "Invalid request body"
	}
}

// Redirect handles URL redirect requests (GET /:shortCode).
func (h *Handlers) Redirect(c *fiber.Ctx) error {
	shortCode := c.Params("shortCode")

	rec, err := h.service.ResolveShortLink(c.UserContext(), shortCode)
	if err != nil {
		if errors.Is(err, link.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Short URL does not exist or has expired.",
			})
		}
		return err
	}

	// Recorded after the redirect decision and never awaited.
	h.service.NotifyRecordAccess(
		rec,
		c.IP(),
		c.Get(fiber.HeaderUserAgent),
		c.Get(fiber.HeaderReferer),
	)

	return c.Redirect(rec.DestinationURL, fiber.StatusFound)
}

// GetAnalytics handles analytics requests (GET /api/analytics/:shortCode).
func (h *Handlers) GetAnalytics(c *fiber.Ctx) error {
	shortCode := c.Params("shortCode")

	result, err := h.service.GetAnalytics(c.UserContext(), shortCode)
	if err != nil {
		if errors.Is(err, link.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("Short code '%s' not found or no analytics available.", shortCode),
			})
		}
		return err
	}

	return c.JSON(AnalyticsResponse{
		ShortCode:    result.Record.Code,
		LongURL:      result.Record.DestinationURL,
		TotalClicks:  result.Snapshot.TotalClicks,
		RecentClicks: result.Snapshot.RecentAccesses,
	})
}

// GetSummary handles analytics summary requests (GET /api/analytics).
func (h *Handlers) GetSummary(c *fiber.Ctx) error {
	return c.JSON(h.summary())
}

// DeleteURL handles URL deletion requests (DELETE /api/admin/shorten/:shortCode).
func (h *Handlers) DeleteURL(c *fiber.Ctx) error {
	shortCode := c.Params("shortCode")

	if !h.service.DeleteShortLink(c.UserContext(), shortCode) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("Short code '%s' not found.", shortCode),
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Short URL '%s' deleted successfully.", shortCode),
	})
}

// HealthCheck handles health check requests (GET /health).
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:  "healthy",
		Modules: make(map[string]ModuleHealth, len(h.checkers)),
	}

	for _, checker := range h.checkers {
		status := checker.Health(c.UserContext())
		resp.Modules[checker.Name()] = ModuleHealth{
			Healthy: status.Healthy,
			Message: status.Message,
			Details: status.Details,
		}
		if !status.Healthy {
			resp.Status = "unhealthy"
		}
	}

	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
