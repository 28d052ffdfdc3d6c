// Package telemetry provides Prometheus instrumentation for the journal.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LoadsTotal counts file loads by outcome.
	LoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_loads_total",
		Help: "File loads by result",
	}, []string{"result"})

	// RowsTotal counts data rows seen by the parser, by disposition.
	RowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_rows_total",
		Help: "Parsed data rows by disposition (accepted, skipped, pending)",
	}, []string{"disposition"})

	// TradesLoaded is the size of the canonical trade set.
	TradesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "journal_trades_loaded",
		Help: "Completed trades currently held",
	})

	// RecomputeDuration tracks dashboard recomputation latency.
	RecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "journal_recompute_duration_seconds",
		Help:    "Time to filter and recompute metrics and aggregations",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1.0},
	})

	// PersistenceFailures counts store errors that were logged and absorbed.
	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_persistence_failures_total",
		Help: "Failed trade store operations",
	}, []string{"op"})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "journal_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveRows records the row dispositions of a successful load.
func ObserveRows(accepted, skipped, pending int) {
	RowsTotal.WithLabelValues("accepted").Add(float64(accepted))
	RowsTotal.WithLabelValues("skipped").Add(float64(skipped))
	RowsTotal.WithLabelValues("pending").Add(float64(pending))
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Route pattern keeps label cardinality bounded.
		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				path = p
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
