package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/example/url-shortener/domain/ratelimit"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// Backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ModuleConfig holds the rate limiter module configuration.
type ModuleConfig struct {
	Limit           ratelimit.Config
	Backend         string
	JanitorInterval time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	KeyPrefix       string
}

// Module provides the creation rate limiter as a mono module.
type Module struct {
	config     ModuleConfig
	client     *redis.Client
	limiter    ratelimit.Limiter
	middleware *Middleware
	logger     types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new rate limiting module.
func NewModule(cfg ModuleConfig, logger types.Logger) *Module {
	if cfg.Backend == "" {
		cfg.Backend = BackendMemory
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ratelimit:create:"
	}
	return &Module{
		config: cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rate-limiter"
}

// Start builds the limiter for the configured backend.
func (m *Module) Start(ctx context.Context) error {
	limiter, err := m.newLimiter(ctx)
	if err != nil {
		return err
	}
	m.limiter = limiter
	m.middleware = NewMiddleware(limiter, m.config.Limit, m.logger)

	m.logger.Info("Rate limiter module started",
		"enabled", m.config.Limit.Enabled,
		"backend", m.config.Backend,
		"maxRequests", m.config.Limit.MaxRequests,
		"windowSeconds", int(m.config.Limit.Window/time.Second))
	return nil
}

func (m *Module) newLimiter(ctx context.Context) (ratelimit.Limiter, error) {
	if !m.config.Limit.Enabled {
		return Disabled{}, nil
	}

	switch m.config.Backend {
	case BackendMemory:
		limiter, err := NewMemoryLimiter(m.config.Limit)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit configuration: %w", err)
		}
		limiter.StartJanitor(m.config.JanitorInterval)
		return limiter, nil

	case BackendRedis:
		if m.config.Limit.MaxRequests < 1 || m.config.Limit.Window <= 0 {
			return nil, fmt.Errorf("invalid rate limit configuration: max=%d window=%s",
				m.config.Limit.MaxRequests, m.config.Limit.Window)
		}
		m.client = redis.NewClient(&redis.Options{
			Addr:     m.config.RedisAddr,
			Password: m.config.RedisPassword,
			DB:       m.config.RedisDB,
		})
		if err := m.client.Ping(ctx).Err(); err != nil {
			_ = m.client.Close()
			m.client = nil
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		m.logger.Info("Connected to Redis", "addr", m.config.RedisAddr)
		return NewSlidingWindowLimiter(m.client, m.config.Limit, m.config.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", m.config.Backend)
	}
}

// Stop releases the limiter and closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.limiter != nil {
		if err := m.limiter.Close(); err != nil {
			m.logger.Warn("Error closing rate limiter", "error", err)
		}
	}
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			m.logger.Warn("Error closing Redis connection", "error", err)
		}
	}
	m.logger.Info("Rate limiter module stopped")
	return nil
}

// Health verifies the Redis connection when the Redis backend is in use.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.limiter == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "limiter not initialized",
		}
	}

	details := map[string]any{
		"enabled": m.config.Limit.Enabled,
		"backend": m.config.Backend,
	}
	if mem, ok := m.limiter.(*MemoryLimiter); ok {
		details["clients"] = mem.Clients()
	}

	if m.client != nil {
		if err := m.client.Ping(ctx).Err(); err != nil {
			return mono.HealthStatus{
				Healthy: false,
				Message: fmt.Sprintf("redis ping failed: %v", err),
				Details: details,
			}
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

// Limiter returns the active limiter.
func (m *Module) Limiter() ratelimit.Limiter {
	return m.limiter
}

// GetMiddleware returns the rate limiting middleware.
func (m *Module) GetMiddleware() *Middleware {
	return m.middleware
}
