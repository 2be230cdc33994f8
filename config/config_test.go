package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 7, cfg.ShortCodeLength)
	assert.Equal(t, DefaultAlphabet, cfg.ShortCodeAlphabet)
	assert.Len(t, cfg.ShortCodeAlphabet, 62)
	assert.Equal(t, 100, cfg.RecentAccessCapacity)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 100, cfg.RateLimit.MaxRequests)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, BackendMemory, cfg.RateLimitBackend)
	assert.Equal(t, time.Duration(0), cfg.LinkSweepInterval)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "http://localhost:5000/", cfg.ShortDomain)
}

func TestOptions(t *testing.T) {
	cfg := New(
		WithPort(8080),
		WithShortDomain("https://sho.rt/"),
		WithAdminAPIKey("k3y"),
		WithShortCode(10, "abc"),
		WithRecentAccessCapacity(5),
		WithLinkSweepInterval(time.Minute),
		WithAnalyticsQueue(16, 4),
		WithRateLimit(false, 3, time.Minute),
		WithRedisBackend("redis:6380", "pw", 2),
	)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://sho.rt/", cfg.ShortDomain)
	assert.Equal(t, "k3y", cfg.AdminAPIKey)
	assert.Equal(t, 10, cfg.ShortCodeLength)
	assert.Equal(t, "abc", cfg.ShortCodeAlphabet)
	assert.Equal(t, 5, cfg.RecentAccessCapacity)
	assert.Equal(t, time.Minute, cfg.LinkSweepInterval)
	assert.Equal(t, 16, cfg.AnalyticsQueueSize)
	assert.Equal(t, 4, cfg.AnalyticsWorkers)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 3, cfg.RateLimit.MaxRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, BackendRedis, cfg.RateLimitBackend)
	assert.Equal(t, "redis:6380", cfg.RedisAddr)
	assert.Equal(t, "pw", cfg.RedisPassword)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_API_KEY", "from-env")
	t.Setenv("SHORT_CODE_LENGTH", "9")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "3")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "60")
	t.Setenv("RATE_LIMIT_BACKEND", "REDIS")
	t.Setenv("LINK_SWEEP_INTERVAL", "30")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "from-env", cfg.AdminAPIKey)
	assert.Equal(t, 9, cfg.ShortCodeLength)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 3, cfg.RateLimit.MaxRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, BackendRedis, cfg.RateLimitBackend)
	assert.Equal(t, 30*time.Second, cfg.LinkSweepInterval)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SHORT_CODE_LENGTH", "seven")
	t.Setenv("RATE_LIMIT_ENABLED", "maybe")
	t.Setenv("LINK_SWEEP_INTERVAL", "soon")

	cfg := Load(WithLinkSweepInterval(time.Hour))

	assert.Equal(t, 7, cfg.ShortCodeLength)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Hour, cfg.LinkSweepInterval)
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"ON", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"off", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, getEnvBool("TEST_BOOL", !tt.want))
		})
	}
}
