// Package metrics exposes Prometheus metrics for the HTTP API and the tables.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/maruel/blogdb/internal/jsonstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "blogdb",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blogdb",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "blogdb",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)

	tableOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blogdb",
			Subsystem: "table",
			Name:      "operations_total",
			Help:      "Total number of table operations.",
		},
		[]string{"table", "op", "result"},
	)

	tableDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "blogdb",
			Subsystem: "table",
			Name:      "operation_duration_seconds",
			Help:      "Duration of table operations, including time spent waiting for the table lock.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
		},
		[]string{"table", "op"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		tableOps,
		tableDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		// ServeMux sets Pattern on the request it routed.
		method := strings.ToUpper(r.Method)
		path := RouteLabel(r.Pattern)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordTableOp records one table operation. Its signature matches blog.OpHook.
func RecordTableOp(table string, op jsonstore.Op, elapsed time.Duration, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, jsonstore.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	tableOps.WithLabelValues(table, string(op), result).Inc()
	tableDuration.WithLabelValues(table, string(op)).Observe(elapsed.Seconds())
}

// RouteLabel returns the path label for a ServeMux pattern such as
// "GET /api/v1/users/{id}". Requests that matched no route share the
// "unmatched" label so that arbitrary URLs cannot create new series.
func RouteLabel(pattern string) string {
	if pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
