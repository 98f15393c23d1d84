package alert

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/notify-channel/internal/domain"
	"github.com/kursadbilgin/notify-channel/internal/observability"
	"github.com/kursadbilgin/notify-channel/internal/ratelimit"
)

const defaultDispatchTimeout = 10 * time.Second

// Dispatcher fans each ingested notification out to the configured sinks.
// Dispatch is fire-and-forget: sink failures are logged and counted, never
// propagated back to the store.
type Dispatcher struct {
	sinks   []Alerter
	limiter ratelimit.RateLimiter
	logger  *zap.Logger
	metrics *observability.Metrics
	timeout time.Duration
}

// NewDispatcher builds a dispatcher; limiter and metrics are optional.
func NewDispatcher(sinks []Alerter, limiter ratelimit.RateLimiter, metrics *observability.Metrics, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		sinks:   sinks,
		limiter: limiter,
		logger:  logger,
		metrics: metrics,
		timeout: defaultDispatchTimeout,
	}
}

// Notify triggers the side effects for one ingested notification.
func (d *Dispatcher) Notify(notification domain.Notification) {
	if d == nil || len(d.sinks) == 0 {
		return
	}
	go d.dispatch(notification)
}

func (d *Dispatcher) dispatch(notification domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if d.limiter != nil {
		allowed, err := d.limiter.Allow(ctx, notification.Type)
		if err != nil {
			// Fail open: a broken limiter must not silence alerts.
			d.logger.Warn("alert rate limiter failed", zap.Error(err))
		} else if !allowed {
			d.logger.Debug("alert suppressed by rate limit",
				zap.String("type", notification.Type),
				zap.String("id", notification.ID),
			)
			return
		}
	}

	for _, sink := range d.sinks {
		if err := sink.Alert(ctx, notification); err != nil {
			d.logger.Warn("alert sink failed",
				zap.String("sink", sink.Name()),
				zap.String("type", notification.Type),
				zap.Bool("transient", IsTransient(err)),
				zap.Error(err),
			)
			d.metrics.IncAlertFailed(sink.Name())
			continue
		}
		d.metrics.IncAlertDispatched(sink.Name())
	}
}
