package ratelimit

import (
	"strconv"

	"github.com/example/url-shortener/domain/ratelimit"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// RateLimitedMessage is the error body returned with 429 responses.
const RateLimitedMessage = "Rate limit exceeded. Please try again later."

// Middleware provides rate limiting middleware for Fiber.
type Middleware struct {
	limiter ratelimit.Limiter
	config  ratelimit.Config
	logger  types.Logger
}

// NewMiddleware creates a new rate limiting middleware.
func NewMiddleware(limiter ratelimit.Limiter, config ratelimit.Config, logger types.Logger) *Middleware {
	return &Middleware{
		limiter: limiter,
		config:  config,
		logger:  logger,
	}
}

// IPRateLimit returns middleware that limits requests by client IP.
func (m *Middleware) IPRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.config.Enabled {
			return c.Next()
		}

		ip := c.IP()
		if ip == "" {
			// Fail closed: reject requests when IP cannot be determined
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Unable to determine client IP address",
			})
		}

		result, err := m.limiter.Allow(c.UserContext(), ip)
		if err != nil {
			// On error, allow the request but log it
			m.logger.Warn("Rate limit check failed, allowing request", "ip", ip, "error", err)
			return c.Next()
		}

		setRateLimitHeaders(c, result, m.config.MaxRequests)

		if !result.Allowed {
			m.logger.Info("Rate limit exceeded", "ip", ip)
			return sendRateLimitExceeded(c, result)
		}

		return c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(c *fiber.Ctx, result *ratelimit.Result, limit int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

// sendRateLimitExceeded sends a 429 Too Many Requests response.
func sendRateLimitExceeded(c *fiber.Ctx, result *ratelimit.Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":       RateLimitedMessage,
		"retry_after": retryAfter,
	})
}
