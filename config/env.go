package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load builds the configuration from defaults, then a .env file in the
// working directory if one exists, then the process environment. Variables
// already set in the environment win over the .env file.
func Load(opts ...Option) Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to read .env file: %v", err)
	}

	cfg := New(opts...)

	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.ShortDomain = getEnv("SHORT_DOMAIN", cfg.ShortDomain)
	cfg.AdminAPIKey = getEnv("ADMIN_API_KEY", cfg.AdminAPIKey)
	cfg.CORSAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)

	cfg.ShortCodeLength = getEnvInt("SHORT_CODE_LENGTH", cfg.ShortCodeLength)
	cfg.ShortCodeAlphabet = getEnv("SHORT_CODE_ALPHABET", cfg.ShortCodeAlphabet)
	cfg.RecentAccessCapacity = getEnvInt("RECENT_ACCESS_CAPACITY", cfg.RecentAccessCapacity)
	cfg.LinkSweepInterval = getEnvDuration("LINK_SWEEP_INTERVAL", cfg.LinkSweepInterval)
	cfg.AnalyticsQueueSize = getEnvInt("ANALYTICS_QUEUE_SIZE", cfg.AnalyticsQueueSize)
	cfg.AnalyticsWorkers = getEnvInt("ANALYTICS_WORKERS", cfg.AnalyticsWorkers)

	cfg.RateLimit.Enabled = getEnvBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.MaxRequests = getEnvInt("RATE_LIMIT_MAX_REQUESTS", cfg.RateLimit.MaxRequests)
	windowSeconds := getEnvInt("RATE_LIMIT_WINDOW_SECONDS", int(cfg.RateLimit.Window/time.Second))
	cfg.RateLimit.Window = time.Duration(windowSeconds) * time.Second
	cfg.RateLimitBackend = strings.ToLower(getEnv("RATE_LIMIT_BACKEND", cfg.RateLimitBackend))
	cfg.RateLimitJanitorInterval = getEnvDuration("RATE_LIMIT_JANITOR_INTERVAL", cfg.RateLimitJanitorInterval)

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)

	return cfg
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value.
// Logs a warning if the value cannot be parsed as an integer.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
		log.Printf("Warning: invalid integer value for %s: %q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool accepts the usual strconv spellings plus yes/no and on/off.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "":
		return defaultValue
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if result, err := strconv.ParseBool(value); err == nil {
		return result
	}
	log.Printf("Warning: invalid boolean value for %s: %q, using default %t", key, value, defaultValue)
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s", "5m") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	log.Printf("Warning: invalid duration value for %s: %q, using default %s", key, value, defaultValue)
	return defaultValue
}
