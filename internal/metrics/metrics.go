package metrics

import (
	"sagetracker/backend/internal/events"
	"sagetracker/backend/internal/hub"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "sagetracker"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Presence and fan-out metrics
	PresenceUsers        prometheus.Gauge
	PresenceConnections  prometheus.Gauge
	FanoutDeliveries     *prometheus.CounterVec
	DispatchDroppedTotal *prometheus.CounterVec

	// Business metrics
	LocationSamplesTotal  prometheus.Counter
	ReconcileRemovedTotal prometheus.Counter

	logger *zap.Logger
}

// New creates and registers all metrics with the default registry
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
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
		PresenceUsers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "presence_users",
				Help:      "Number of users with at least one live connection",
			},
		),
		PresenceConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "presence_connections",
				Help:      "Number of live connections",
			},
		),
		FanoutDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fanout_deliveries_total",
				Help:      "Per-connection event deliveries by event and result",
			},
			[]string{"event", "result"},
		),
		DispatchDroppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_dropped_total",
				Help:      "Events dropped because the dispatch queue was full or closed",
			},
			[]string{"event"},
		),
		LocationSamplesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "location_samples_total",
				Help:      "Total number of ingested location samples",
			},
		),
		ReconcileRemovedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_removed_total",
				Help:      "One-sided friendship edges removed by reconciliation",
			},
		),
		logger: logger,
	}
}

var (
	_ hub.Observer         = (*Metrics)(nil)
	_ hub.DeliveryRecorder = (*Metrics)(nil)
	_ hub.DropRecorder     = (*Metrics)(nil)
)

// PresenceChanged implements hub.Observer.
func (m *Metrics) PresenceChanged(users, connections int) {
	m.safeExecute("PresenceChanged", func() {
		m.PresenceUsers.Set(float64(users))
		m.PresenceConnections.Set(float64(connections))
	})
}

// DeliveryAttempted implements hub.DeliveryRecorder.
func (m *Metrics) DeliveryAttempted(event events.Name, ok bool) {
	m.safeExecute("DeliveryAttempted", func() {
		result := "success"
		if !ok {
			result = "failure"
		}
		m.FanoutDeliveries.WithLabelValues(string(event), result).Inc()
	})
}

// DispatchDropped implements hub.DropRecorder.
func (m *Metrics) DispatchDropped(event events.Name) {
	m.safeExecute("DispatchDropped", func() {
		m.DispatchDroppedTotal.WithLabelValues(string(event)).Inc()
	})
}

func (m *Metrics) RecordLocationSample() {
	m.safeExecute("RecordLocationSample", func() {
		m.LocationSamplesTotal.Inc()
	})
}

func (m *Metrics) RecordReconcileRemoved(n int) {
	m.safeExecute("RecordReconcileRemoved", func() {
		m.ReconcileRemovedTotal.Add(float64(n))
	})
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
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
