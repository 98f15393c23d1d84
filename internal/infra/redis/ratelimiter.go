package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kursadbilgin/notify-channel/internal/ratelimit"
)

const (
	defaultLimitPerSec int64 = 5
	windowSeconds            = 1
)

var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.RateLimiter = (*AlertRateLimiter)(nil)

// AlertRateLimiter is a per-second rate limiter over alert side effects,
// keyed by notification type and shared across client instances through
// redis.
type AlertRateLimiter struct {
	client      *goredis.Client
	limitPerSec int64
	now         func() time.Time
	script      *goredis.Script
}

func NewAlertRateLimiter(client *goredis.Client, limitPerSec int) (*AlertRateLimiter, error) {
	return newAlertRateLimiter(client, int64(limitPerSec), time.Now)
}

func newAlertRateLimiter(client *goredis.Client, limitPerSec int64, nowFn func() time.Time) (*AlertRateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if limitPerSec <= 0 {
		limitPerSec = defaultLimitPerSec
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	return &AlertRateLimiter{
		client:      client,
		limitPerSec: limitPerSec,
		now:         nowFn,
		script:      allowScript,
	}, nil
}

func (r *AlertRateLimiter) Allow(ctx context.Context, notificationType string) (bool, error) {
	if r == nil || r.client == nil || r.script == nil {
		return false, fmt.Errorf("rate limiter is not initialized")
	}

	normalizedType := strings.ToLower(strings.TrimSpace(notificationType))
	if normalizedType == "" {
		normalizedType = "unknown"
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key := fmt.Sprintf("alertlimit:%s:%d", normalizedType, r.now().UTC().Unix())
	result, err := r.script.Run(ctx, r.client, []string{key}, r.limitPerSec, windowSeconds).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate alert rate limit: %w", err)
	}

	return result == 1, nil
}
