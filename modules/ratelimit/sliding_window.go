// Package ratelimit provides the sliding window rate limiters and the Fiber
// middleware guarding link creation.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/example/url-shortener/domain/ratelimit"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript applies the sliding window log atomically on a sorted
// set scored by request time in milliseconds.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_size_ms = tonumber(ARGV[4])

	-- Remove entries that left the window
	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)

	if count < limit then
		-- Atomic counter keeps members unique within the same millisecond
		local counter = redis.call('INCR', counter_key)
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('PEXPIRE', key, window_size_ms)
		redis.call('PEXPIRE', counter_key, window_size_ms)
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		return {1, limit - count - 1, oldest[2] + window_size_ms - now}
	else
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		local retry_after = 0
		if #oldest >= 2 then
			retry_after = oldest[2] + window_size_ms - now
		end
		return {0, 0, retry_after}
	end
`)

// SlidingWindowLimiter implements the sliding window limiter on Redis so that
// several instances can share one creation quota per client.
type SlidingWindowLimiter struct {
	client *redis.Client
	config ratelimit.Config
	prefix string
}

// NewSlidingWindowLimiter creates a new Redis sliding window rate limiter.
func NewSlidingWindowLimiter(client *redis.Client, config ratelimit.Config, prefix string) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client: client,
		config: config,
		prefix: prefix,
	}
}

// Allow checks if a request is allowed under the rate limit.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (*ratelimit.Result, error) {
	now := time.Now()
	redisKey := l.prefix + key
	counterKey := redisKey + ":counter"

	nowMs := now.UnixMilli()
	// Entries scored at or before window start are outside the window.
	windowStartMs := now.Add(-l.config.Window).UnixMilli()
	windowSizeMs := l.config.Window.Milliseconds()

	result, err := slidingWindowScript.Run(ctx, l.client, []string{redisKey, counterKey},
		nowMs,
		windowStartMs,
		l.config.MaxRequests,
		windowSizeMs,
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	if len(result) < 3 {
		return nil, fmt.Errorf("unexpected result length: %d", len(result))
	}

	allowedVal, ok := result[0].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for allowed: %T", result[0])
	}
	remainingVal, ok := result[1].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for remaining: %T", result[1])
	}
	resetMs, ok := result[2].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for reset: %T", result[2])
	}

	reset := time.Duration(resetMs) * time.Millisecond
	res := &ratelimit.Result{
		Allowed:   allowedVal == 1,
		Remaining: int(remainingVal),
		ResetAt:   now.Add(reset),
	}
	if !res.Allowed && reset > 0 {
		res.RetryAfter = reset
	}
	return res, nil
}

// Close releases any resources (Redis client is managed by the module).
func (l *SlidingWindowLimiter) Close() error {
	return nil
}

// Config returns the limiter's configuration.
func (l *SlidingWindowLimiter) Config() ratelimit.Config {
	return l.config
}
