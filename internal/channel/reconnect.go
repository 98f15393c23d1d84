package channel

import (
	"errors"
	"time"

	"github.com/jpillora/backoff"
)

// ErrRetriesExhausted signals that the attempt counter reached the maximum
// and no further automatic reconnect will be scheduled.
var ErrRetriesExhausted = errors.New("reconnect attempts exhausted")

const (
	// DefaultBaseDelay is the first retry delay after an abnormal close.
	DefaultBaseDelay = 3 * time.Second

	// DefaultMaxAttempts bounds automatic reconnection. Only ForceReconnect
	// leaves the exhausted state.
	DefaultMaxAttempts = 5
)

// Policy is the pure backoff decision: given the current attempt counter it
// yields the delay before the next connect, or reports exhaustion. The
// Manager increments the counter before consulting the policy, so the first
// retry after an abnormal close waits base*2^1.
type Policy struct {
	maxAttempts int
	backoff     *backoff.Backoff
}

func NewPolicy(baseDelay time.Duration, maxAttempts int) *Policy {
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Policy{
		maxAttempts: maxAttempts,
		backoff: &backoff.Backoff{
			Min:    baseDelay,
			Max:    baseDelay << uint(maxAttempts),
			Factor: 2,
			Jitter: false,
		},
	}
}

// Delay returns base*2^attempts and true while attempts < MaxAttempts, and
// (0, false) once the counter is exhausted.
func (p *Policy) Delay(attempts int) (time.Duration, bool) {
	if attempts >= p.maxAttempts {
		return 0, false
	}
	return p.backoff.ForAttempt(float64(attempts)), true
}

func (p *Policy) MaxAttempts() int {
	return p.maxAttempts
}
