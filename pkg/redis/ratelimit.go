package redis

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements sliding window rate limiting using Redis
// ⭐ SSOT: 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key      string        // Unique identifier (e.g., "upbit", "naver")
	Limit    int           // Maximum requests allowed
	Window   time.Duration // Time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
	}
}

// slidingWindowScript trims the window, counts and admits atomically.
// Members carry a sequence suffix so that two requests in the same millisecond
// are counted separately.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)
	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1}
	end
	return {0, 0}
`)

var memberSeq atomic.Uint64

// Allow checks if a request is allowed under the rate limit
// Returns (allowed, remaining, error)
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	if !r.client.Enabled() {
		return true, cfg.Limit, nil
	}

	now := time.Now().UnixMilli()
	member := fmt.Sprintf("%d-%d", now, memberSeq.Add(1))

	result, err := slidingWindowScript.Run(ctx, r.client.Redis(), []string{r.key(cfg)},
		now,
		now-cfg.Window.Milliseconds(),
		cfg.Limit,
		cfg.Window.Milliseconds(),
		member,
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, fmt.Errorf("rate limit script returned %d values", len(result))
	}

	return result[0] == 1, int(result[1]), nil
}

func (r *RateLimiter) key(cfg RateLimitConfig) string {
	return fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
}

// Wait blocks until a request is allowed or context is cancelled
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		allowed, _, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		// Wait before retrying
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Retry
		}
	}
}

// LimitFor returns the shared limit for an upstream venue.
// Unknown venues fall back to a conservative 5 req/s.
func LimitFor(venue string) RateLimitConfig {
	if cfg, ok := upstreamLimits[venue]; ok {
		return cfg
	}
	return RateLimitConfig{Key: venue, Limit: 5, Window: time.Second}
}

// 거래소 공개 API 제한 (보수적)
var upstreamLimits = map[string]RateLimitConfig{
	"upbit":   {Key: "upbit", Limit: 10, Window: time.Second},
	"bithumb": {Key: "bithumb", Limit: 15, Window: time.Second},
	"coinone": {Key: "coinone", Limit: 10, Window: time.Second},
	"binance": {Key: "binance", Limit: 20, Window: time.Second},
	"naver":   {Key: "naver", Limit: 10, Window: time.Second},
	"yahoo":   {Key: "yahoo", Limit: 5, Window: time.Second},
}
