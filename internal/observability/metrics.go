package observability

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the notification channel.
type Metrics struct {
	registry *prometheus.Registry

	connectionUp                *prometheus.GaugeVec
	reconnectsScheduledTotal    prometheus.Counter
	framesReceivedTotal         prometheus.Counter
	notificationsIngestedTotal  *prometheus.CounterVec
	heartbeatsSentTotal         prometheus.Counter
	cacheOperationFailuresTotal *prometheus.CounterVec
	alertsDispatchedTotal       *prometheus.CounterVec
	alertsFailedTotal           *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		connectionUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "notify_channel",
				Name:      "connection_up",
				Help:      "Whether the websocket channel is currently open (1) or closed (0).",
			},
			[]string{"endpoint"},
		),
		reconnectsScheduledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notify_channel",
				Name:      "reconnects_scheduled_total",
				Help:      "Total number of reconnect attempts scheduled after unexpected closes.",
			},
		),
		framesReceivedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notify_channel",
				Name:      "frames_received_total",
				Help:      "Total number of inbound frames received on the channel.",
			},
		),
		notificationsIngestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_channel",
				Name:      "notifications_ingested_total",
				Help:      "Total number of notifications ingested into the store by type.",
			},
			[]string{"type"},
		),
		heartbeatsSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notify_channel",
				Name:      "heartbeats_sent_total",
				Help:      "Total number of keep-alive frames sent while connected.",
			},
		),
		cacheOperationFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_channel",
				Name:      "cache_operation_failures_total",
				Help:      "Total number of durable cache operations that failed by operation.",
			},
			[]string{"operation"},
		),
		alertsDispatchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_channel",
				Name:      "alerts_dispatched_total",
				Help:      "Total number of side-effect alerts delivered by sink.",
			},
			[]string{"sink"},
		),
		alertsFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify_channel",
				Name:      "alerts_failed_total",
				Help:      "Total number of side-effect alerts that failed by sink.",
			},
			[]string{"sink"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.connectionUp,
		m.reconnectsScheduledTotal,
		m.framesReceivedTotal,
		m.notificationsIngestedTotal,
		m.heartbeatsSentTotal,
		m.cacheOperationFailuresTotal,
		m.alertsDispatchedTotal,
		m.alertsFailedTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SetConnected(endpoint string, connected bool) {
	if m == nil {
		return
	}
	value := 0.0
	if connected {
		value = 1.0
	}
	m.connectionUp.WithLabelValues(endpoint).Set(value)
}

func (m *Metrics) IncReconnectScheduled() {
	if m == nil {
		return
	}
	m.reconnectsScheduledTotal.Inc()
}

func (m *Metrics) IncFrameReceived() {
	if m == nil {
		return
	}
	m.framesReceivedTotal.Inc()
}

func (m *Metrics) IncNotificationIngested(notificationType string) {
	if m == nil {
		return
	}
	m.notificationsIngestedTotal.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

func (m *Metrics) IncHeartbeatSent() {
	if m == nil {
		return
	}
	m.heartbeatsSentTotal.Inc()
}

func (m *Metrics) IncCacheFailure(operation string) {
	if m == nil {
		return
	}
	m.cacheOperationFailuresTotal.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *Metrics) IncAlertDispatched(sink string) {
	if m == nil {
		return
	}
	m.alertsDispatchedTotal.WithLabelValues(normalizeLabel(sink)).Inc()
}

func (m *Metrics) IncAlertFailed(sink string) {
	if m == nil {
		return
	}
	m.alertsFailedTotal.WithLabelValues(normalizeLabel(sink)).Inc()
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
