package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "teamchat_service"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnectionsTotal  prometheus.Counter
	WSConnectionsActive prometheus.Gauge
	WSAuthFailuresTotal *prometheus.CounterVec
	BroadcastsTotal     *prometheus.CounterVec
	DeliveriesTotal     prometheus.Counter
	DroppedDeliveries   prometheus.Counter

	// Presence metrics
	OnlineSessions prometheus.Gauge
	TypingMarkers  prometheus.Gauge

	// Business metrics
	MessagesPersistedTotal *prometheus.CounterVec

	logger *zap.Logger
}

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, nil)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),

		WSConnectionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_connections_total",
				Help:      "Total number of accepted WebSocket connections",
			},
		),
		WSConnectionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections_active",
				Help:      "Current number of open WebSocket connections",
			},
		),
		WSAuthFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_auth_failures_total",
				Help:      "Total number of failed in-band authentications",
			},
			[]string{"reason"},
		),
		BroadcastsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "broadcasts_total",
				Help:      "Total number of room broadcasts by event",
			},
			[]string{"event"},
		),
		DeliveriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Total number of frames enqueued to connections",
			},
		),
		DroppedDeliveries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_deliveries_total",
				Help:      "Total number of frames dropped because a connection buffer was full or closed",
			},
		),

		OnlineSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "online_sessions",
				Help:      "Current number of authenticated sessions",
			},
		),
		TypingMarkers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "typing_markers",
				Help:      "Current number of typing markers",
			},
		),

		MessagesPersistedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_persisted_total",
				Help:      "Total number of messages written, by conversation kind",
			},
			[]string{"kind"},
		),

		logger: logger,
	}
}

// safeExecute wraps metric operations with panic recovery.
// A nil *Metrics turns every recorder into a no-op.
func (m *Metrics) safeExecute(operation string, fn func()) {
	if m == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
