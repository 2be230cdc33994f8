// Package config assembles the application configuration from defaults,
// an optional .env file and environment variables.
package config

import (
	"time"

	"github.com/example/url-shortener/domain/ratelimit"
)

// DefaultAlphabet is the default short code alphabet: ASCII letters and digits.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Rate limit backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// ShortDomain is prefixed to short codes when building short URLs.
	ShortDomain string

	// AdminAPIKey guards the admin endpoints (X-Admin-API-Key header).
	AdminAPIKey string

	// CORSAllowedOrigins is a comma separated list of allowed origins.
	CORSAllowedOrigins string

	// ShortCodeLength is the length of generated short codes.
	ShortCodeLength int

	// ShortCodeAlphabet is the character set of generated short codes.
	ShortCodeAlphabet string

	// RecentAccessCapacity bounds the recent access log kept per code.
	RecentAccessCapacity int

	// LinkSweepInterval enables a periodic sweep of expired links when > 0.
	LinkSweepInterval time.Duration

	// AnalyticsQueueSize bounds the queue of pending access notifications.
	AnalyticsQueueSize int

	// AnalyticsWorkers is the number of workers draining the queue.
	AnalyticsWorkers int

	// RateLimit configures the creation rate limit.
	RateLimit ratelimit.Config

	// RateLimitBackend selects the limiter storage: "memory" or "redis".
	RateLimitBackend string

	// RateLimitJanitorInterval drops idle in-memory client windows when > 0.
	RateLimitJanitorInterval time.Duration

	// RedisAddr is the Redis server address (e.g., "localhost:6379")
	RedisAddr string

	// RedisPassword is the Redis authentication password (optional)
	RedisPassword string

	// RedisDB is the Redis database number (default: 0)
	RedisDB int
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:                     5000,
		ShortDomain:              "http://localhost:5000/",
		AdminAPIKey:              "supersecretadminkey",
		CORSAllowedOrigins:       "http://localhost:3000,http://localhost:5000",
		ShortCodeLength:          7,
		ShortCodeAlphabet:        DefaultAlphabet,
		RecentAccessCapacity:     100,
		LinkSweepInterval:        0,
		AnalyticsQueueSize:       1024,
		AnalyticsWorkers:         2,
		RateLimit:                ratelimit.DefaultConfig(),
		RateLimitBackend:         BackendMemory,
		RateLimitJanitorInterval: 10 * time.Minute,
		RedisAddr:                "localhost:6379",
		RedisPassword:            "",
		RedisDB:                  0,
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// New returns the default config with the given options applied.
func New(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithPort sets the HTTP listen port.
func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithShortDomain sets the prefix used to build short URLs.
func WithShortDomain(domain string) Option {
	return func(c *Config) {
		c.ShortDomain = domain
	}
}

// WithAdminAPIKey sets the admin credential.
func WithAdminAPIKey(key string) Option {
	return func(c *Config) {
		c.AdminAPIKey = key
	}
}

// WithShortCode sets the generated code length and alphabet.
func WithShortCode(length int, alphabet string) Option {
	return func(c *Config) {
		c.ShortCodeLength = length
		c.ShortCodeAlphabet = alphabet
	}
}

// WithRecentAccessCapacity sets how many recent accesses are kept per code.
func WithRecentAccessCapacity(capacity int) Option {
	return func(c *Config) {
		c.RecentAccessCapacity = capacity
	}
}

// WithLinkSweepInterval enables the periodic expired link sweep.
func WithLinkSweepInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.LinkSweepInterval = interval
	}
}

// WithAnalyticsQueue sets the access notification queue size and worker count.
func WithAnalyticsQueue(size, workers int) Option {
	return func(c *Config) {
		c.AnalyticsQueueSize = size
		c.AnalyticsWorkers = workers
	}
}

// WithRateLimit sets the creation rate limit.
func WithRateLimit(enabled bool, maxRequests int, window time.Duration) Option {
	return func(c *Config) {
		c.RateLimit = ratelimit.Config{
			Enabled:     enabled,
			MaxRequests: maxRequests,
			Window:      window,
		}
	}
}

// WithRedisBackend stores rate limit windows in Redis.
func WithRedisBackend(addr, password string, db int) Option {
	return func(c *Config) {
		c.RateLimitBackend = BackendRedis
		c.RedisAddr = addr
		c.RedisPassword = password
		c.RedisDB = db
	}
}
