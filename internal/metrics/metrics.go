// Package metrics holds the Prometheus collectors for relay passes and the
// source API client, plus the small HTTP server that exposes them.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "avitobridge"

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register is called by init() to enqueue collectors.
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers all collectors with reg exactly once.
func MustRegister(reg prometheus.Registerer) {
	once.Do(func() {
		reg.MustRegister(collectors...)
	})
}

func init() {
	register(relayRunsTotal, chatsProcessedTotal, messagesForwardedTotal, sourceRequestsTotal, relayRunDuration)
}

var (
	relayRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_runs_total",
			Help:      "Relay passes, labeled by whether the chat listing succeeded.",
		},
		[]string{"status"},
	)

	chatsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chats_processed_total",
			Help:      "Chats processed per pass, labeled by last stage reached and outcome.",
		},
		[]string{"stage", "status"},
	)

	messagesForwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_forwarded_total",
			Help:      "Text messages included in successful forwards.",
		},
	)

	sourceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Requests to the source messenger API, labeled by endpoint and HTTP status (0 for transport errors).",
		},
		[]string{"endpoint", "status"},
	)

	relayRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_run_duration_seconds",
			Help:      "Wall time of a full relay pass.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)
)

// ObserveRun records one finished relay pass.
func ObserveRun(listed bool, d time.Duration) {
	status := "ok"
	if !listed {
		status = "list_failed"
	}
	relayRunsTotal.WithLabelValues(status).Inc()
	relayRunDuration.Observe(d.Seconds())
}

// IncChat records the outcome of one chat.
func IncChat(stage string, ok bool) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	chatsProcessedTotal.WithLabelValues(stage, status).Inc()
}

// AddForwarded counts text messages delivered by a successful forward.
func AddForwarded(n int) {
	if n > 0 {
		messagesForwardedTotal.Add(float64(n))
	}
}

// IncSourceRequest records one source API call.
func IncSourceRequest(endpoint string, statusCode int) {
	sourceRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
}
