package ratelimit

import "context"

// RateLimiter caps side-effect alert throughput per notification type, so a
// reconnect burst does not turn into an alert storm.
type RateLimiter interface {
	Allow(ctx context.Context, notificationType string) (bool, error)
}
