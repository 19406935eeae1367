// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_cache_lookups_total",
		Help: "Total cache-aside lookups by key family and result (hit or miss)",
	}, []string{"family", "result"})

	// DelegateFailures counts failed calls to external collaborators.
	DelegateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_delegate_failures_total",
		Help: "Total failed calls to the media host and mail provider",
	}, []string{"delegate", "operation"})

	// EmailsSent counts outgoing mail by template and outcome.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_emails_sent_total",
		Help: "Total outgoing emails by template and outcome",
	}, []string{"template", "outcome"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scribe_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts published activity events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// RealtimeDeliveries counts activity events as they pass through the
	// Redis subscription and out to websocket clients.
	RealtimeDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_realtime_deliveries_total",
		Help: "Total activity events by delivery stage (received or delivered)",
	}, []string{"stage"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// RecordDelegateFailure increments the failure counter for an external call.
func RecordDelegateFailure(delegate, operation string) {
	DelegateFailures.WithLabelValues(delegate, operation).Inc()
}
