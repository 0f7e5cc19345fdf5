// Package metrics holds the Prometheus collectors shared by the server and
// the worker.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "societyfund"

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "status"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "files_total",
		},
		[]string{"report", "format", "success"},
	)

	exportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "duration_seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"report", "format"},
	)

	storeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
		},
		[]string{"kind", "op", "success"},
	)

	notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "amqp",
			Name:      "notifications_total",
		},
		[]string{"direction", "success"},
	)

	publishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheets",
			Name:      "publishes_total",
		},
		[]string{"success"},
	)
)

func ObserveHTTPRequest(method string, status int, elapsed time.Duration) {
	httpRequestDuration.
		WithLabelValues(method, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

func ObserveExport(report, format string, elapsed time.Duration, err error) {
	exportsTotal.WithLabelValues(report, format, success(err)).Inc()
	exportDuration.WithLabelValues(report, format).Observe(elapsed.Seconds())
}

func CountStoreOperation(kind, op string, err error) {
	storeOperations.WithLabelValues(kind, op, success(err)).Inc()
}

// CountNotification records a change message; direction is "publish" or "consume".
func CountNotification(direction string, err error) {
	notifications.WithLabelValues(direction, success(err)).Inc()
}

func CountPublish(err error) {
	publishes.WithLabelValues(success(err)).Inc()
}

func success(err error) string {
	return strconv.FormatBool(err == nil)
}
