package channel

import (
	"time"

	"go.uber.org/zap"
)

// DefaultHeartbeatInterval matches the server's idle-timeout expectations.
const DefaultHeartbeatInterval = 30 * time.Second

const heartbeatPayload = "ping"

// heartbeatMonitor emits keep-alive frames on a fixed interval while the
// connection is open. A failed send is skipped silently; transport failures
// surface through the reader, not here.
type heartbeatMonitor struct {
	interval time.Duration
	send     func() error
	logger   *zap.Logger
}

func newHeartbeatMonitor(interval time.Duration, send func() error, logger *zap.Logger) *heartbeatMonitor {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &heartbeatMonitor{
		interval: interval,
		send:     send,
		logger:   logger,
	}
}

// run blocks until stop is closed, sending one keep-alive per tick.
func (h *heartbeatMonitor) run(stop <-chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := h.send(); err != nil {
				h.logger.Debug("heartbeat skipped", zap.Error(err))
			}
		}
	}
}
