package channel

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kursadbilgin/notify-channel/internal/domain"
	"github.com/kursadbilgin/notify-channel/internal/identity"
	"github.com/kursadbilgin/notify-channel/internal/observability"
	"github.com/kursadbilgin/notify-channel/internal/store"
)

const (
	// DefaultConnectTimeout aborts a connect attempt still handshaking.
	DefaultConnectTimeout = 10 * time.Second

	// forceReconnectSettleDelay lets the closed transport drain before a
	// forced reconnect dials again.
	forceReconnectSettleDelay = 1 * time.Second

	closeWriteTimeout = 2 * time.Second
)

// Manager owns the single live websocket to the notification endpoint. It
// tracks connection health, feeds inbound frames into the store, keeps the
// connection alive with heartbeats, and drives reconnection with backoff
// after abnormal closes.
//
// Each successful dial starts one reader goroutine and one heartbeat
// goroutine tied to a connection epoch; goroutines and timers from an older
// epoch never act on a newer connection.
type Manager struct {
	serverURL         string
	provider          identity.Provider
	store             *store.Store
	policy            *Policy
	dialer            *websocket.Dialer
	heartbeatInterval time.Duration
	settleDelay       time.Duration
	logger            *zap.Logger
	metrics           *observability.Metrics
	now               func() time.Time

	mu             sync.Mutex
	conn           *websocket.Conn
	epoch          uint64
	stop           chan struct{}
	status         domain.ConnectionStatus
	statusSubs     map[int]chan domain.ConnectionStatus
	nextSubID      int
	reconnectTimer *time.Timer
	settleTimer    *time.Timer

	writeMu sync.Mutex
}

func NewManager(
	serverURL string,
	provider identity.Provider,
	st *store.Store,
	policy *Policy,
	connectTimeout time.Duration,
	heartbeatInterval time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*Manager, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("server url is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if st == nil {
		return nil, fmt.Errorf("notification store is required")
	}
	if policy == nil {
		policy = NewPolicy(0, 0)
	}
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	if heartbeatInterval <= 0 {
		heartbeatInterval = DefaultHeartbeatInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		serverURL: serverURL,
		provider:  provider,
		store:     st,
		policy:    policy,
		dialer: &websocket.Dialer{
			HandshakeTimeout: connectTimeout,
		},
		heartbeatInterval: heartbeatInterval,
		settleDelay:       forceReconnectSettleDelay,
		logger:            logger,
		metrics:           metrics,
		now:               time.Now,
		statusSubs:        make(map[int]chan domain.ConnectionStatus),
	}, nil
}

// Connect opens the channel. It is a no-op when already connected, fails
// fast when the attempt counter is exhausted or no usable credential is
// available, and on a dial failure increments the counter and schedules the
// next attempt per the policy.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		return nil
	}

	if m.status.ReconnectAttempts >= m.policy.MaxAttempts() {
		m.logger.Warn("not connecting, reconnect attempts exhausted",
			zap.Int("attempts", m.status.ReconnectAttempts),
		)
		return ErrRetriesExhausted
	}

	token, err := m.provider.Token(ctx)
	if err != nil {
		m.logger.Error("cannot connect without a usable token", zap.Error(err))
		return fmt.Errorf("credential check failed: %w", err)
	}

	endpoint, err := endpointWithToken(m.serverURL, token)
	if err != nil {
		return err
	}

	m.logger.Info("connecting to notification channel",
		zap.String("endpoint", m.serverURL),
		zap.Int("attempts", m.status.ReconnectAttempts),
	)

	conn, _, err := m.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		m.logger.Warn("connect failed", zap.Error(err))
		m.status.ReconnectAttempts++
		m.scheduleReconnectLocked()
		m.publishStatusLocked()
		return fmt.Errorf("failed to dial %s: %w", m.serverURL, err)
	}

	m.cancelReconnectLocked()

	m.epoch++
	epoch := m.epoch
	m.conn = conn
	m.stop = make(chan struct{})
	m.status.IsConnected = true
	m.status.LastConnected = m.now()
	m.status.ReconnectAttempts = 0
	m.publishStatusLocked()
	m.metrics.SetConnected(m.serverURL, true)

	monitor := newHeartbeatMonitor(m.heartbeatInterval, m.sendHeartbeat, m.logger)
	go monitor.run(m.stop)
	go m.readLoop(epoch, conn)

	m.logger.Info("notification channel connected")
	return nil
}

// Disconnect closes the channel intentionally: pending reconnect and settle
// timers are cancelled, the attempt counter resets, and the transport is
// closed with the normal code. Idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectLocked()
}

func (m *Manager) disconnectLocked() {
	m.cancelReconnectLocked()
	if m.settleTimer != nil {
		m.settleTimer.Stop()
		m.settleTimer = nil
	}

	m.status.ReconnectAttempts = 0
	if m.conn == nil {
		m.publishStatusLocked()
		return
	}

	m.epoch++
	close(m.stop)
	m.stop = nil

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := m.conn.WriteControl(websocket.CloseMessage, message, m.now().Add(closeWriteTimeout)); err != nil {
		m.logger.Debug("failed to send close frame", zap.Error(err))
	}
	if err := m.conn.Close(); err != nil {
		m.logger.Debug("failed to close transport", zap.Error(err))
	}
	m.conn = nil

	m.status.IsConnected = false
	m.publishStatusLocked()
	m.metrics.SetConnected(m.serverURL, false)

	m.logger.Info("notification channel disconnected")
}

// ForceReconnect resets the attempt counter, drops any current connection,
// and dials again after a short settle delay. It is the only way out of the
// exhausted state.
func (m *Manager) ForceReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("forcing reconnect")
	m.disconnectLocked()

	m.settleTimer = time.AfterFunc(m.settleDelay, func() {
		if err := m.Connect(context.Background()); err != nil {
			m.logger.Warn("forced reconnect failed", zap.Error(err))
		}
	})
}

// Status returns the current connection snapshot.
func (m *Manager) Status() domain.ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// SubscribeStatus returns a channel that receives the current status
// immediately and a fresh snapshot after every change. Slow consumers see
// the latest state only. The cancel function releases the subscription.
func (m *Manager) SubscribeStatus() (<-chan domain.ConnectionStatus, func()) {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	ch := make(chan domain.ConnectionStatus, 1)
	ch <- m.status
	m.statusSubs[id] = ch
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if sub, ok := m.statusSubs[id]; ok {
			delete(m.statusSubs, id)
			close(sub)
		}
		m.mu.Unlock()
	}

	return ch, cancel
}

func (m *Manager) readLoop(epoch uint64, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			m.handleClose(epoch, err)
			return
		}

		m.metrics.IncFrameReceived()
		m.store.Ingest(domain.DecodeWire(payload, m.now()))
	}
}

// handleClose reacts to the reader terminating. A normal closure ends the
// channel quietly; any other cause increments the attempt counter and
// consults the policy for the next retry.
func (m *Manager) handleClose(epoch uint64, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		// A newer connection or an intentional disconnect superseded this
		// reader; nothing left to do.
		return
	}

	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.status.IsConnected = false
	m.metrics.SetConnected(m.serverURL, false)

	if websocket.IsCloseError(cause, websocket.CloseNormalClosure) {
		m.logger.Info("notification channel closed normally")
		m.publishStatusLocked()
		return
	}

	m.status.ReconnectAttempts++
	m.logger.Warn("notification channel closed unexpectedly",
		zap.Int("attempts", m.status.ReconnectAttempts),
		zap.Error(cause),
	)
	m.scheduleReconnectLocked()
	m.publishStatusLocked()
}

// scheduleReconnectLocked arms the retry timer per the policy, replacing
// any pending one. Exhaustion is logged, never fatal.
func (m *Manager) scheduleReconnectLocked() {
	delay, ok := m.policy.Delay(m.status.ReconnectAttempts)
	if !ok {
		m.logger.Error("reconnect attempts exhausted, giving up",
			zap.Int("attempts", m.status.ReconnectAttempts),
		)
		return
	}

	m.cancelReconnectLocked()
	m.logger.Info("reconnect scheduled",
		zap.Duration("delay", delay),
		zap.Int("attempts", m.status.ReconnectAttempts),
	)
	m.metrics.IncReconnectScheduled()

	m.reconnectTimer = time.AfterFunc(delay, func() {
		if err := m.Connect(context.Background()); err != nil {
			m.logger.Warn("scheduled reconnect failed", zap.Error(err))
		}
	})
}

func (m *Manager) cancelReconnectLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}

func (m *Manager) publishStatusLocked() {
	for _, sub := range m.statusSubs {
		select {
		case sub <- m.status:
		default:
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- m.status:
			default:
			}
		}
	}
}

// sendHeartbeat writes one keep-alive frame. Called from the heartbeat
// goroutine; skips silently when the transport is gone.
func (m *Manager) sendHeartbeat() error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(heartbeatPayload)); err != nil {
		return fmt.Errorf("failed to send heartbeat: %w", err)
	}

	m.metrics.IncHeartbeatSent()
	return nil
}

// endpointWithToken embeds the bearer token as a query parameter, the only
// auth channel the websocket handshake offers the server.
func endpointWithToken(serverURL, token string) (string, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}

	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
