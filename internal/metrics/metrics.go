package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	stepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gravsim_steps_total",
			Help: "Total number of completed simulation steps.",
		},
	)

	stepDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gravsim_step_duration_seconds",
			Help:    "Wall-clock duration of a single simulation step.",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
		},
	)

	bodies = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gravsim_bodies",
			Help: "Number of bodies in the running system.",
		},
	)

	simulatedMinutes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gravsim_simulated_minutes",
			Help: "Simulated time elapsed since the initial configuration, in minutes.",
		},
	)

	degenerateStepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gravsim_degenerate_steps_total",
			Help: "Steps aborted because two bodies coincided or the state became non-finite.",
		},
	)

	publishErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravsim_snapshot_publish_errors_total",
			Help: "Snapshot publish failures by sink.",
		},
		[]string{"sink"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravsim_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gravsim_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	streamConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravsim_stream_connections_total",
			Help: "SSE stream connect/disconnect events.",
		},
		[]string{"event"},
	)

	streamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gravsim_streams_active",
			Help: "Currently open SSE streams.",
		},
	)

	streamMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gravsim_stream_messages_total",
			Help: "SSE messages sent.",
		},
	)

	streamBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gravsim_stream_bytes_total",
			Help: "SSE bytes sent.",
		},
	)

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gravsim_stream_errors_total",
			Help: "SSE stream errors by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		stepsTotal,
		stepDurationSeconds,
		bodies,
		simulatedMinutes,
		degenerateStepsTotal,
		publishErrorsTotal,
		httpRequestsTotal,
		httpDurationSeconds,
		streamConnectionsTotal,
		streamsActive,
		streamMessagesTotal,
		streamBytesTotal,
		streamErrorsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStep counts one completed step and observes its duration.
func RecordStep(d time.Duration) {
	stepsTotal.Inc()
	stepDurationSeconds.Observe(d.Seconds())
}

// SetBodies records the body count of the running system.
func SetBodies(n int) {
	bodies.Set(float64(n))
}

// SetSimulatedMinutes records simulated time elapsed.
func SetSimulatedMinutes(m float64) {
	simulatedMinutes.Set(m)
}

// IncDegenerateSteps counts a step aborted on degenerate geometry.
func IncDegenerateSteps() {
	degenerateStepsTotal.Inc()
}

// IncPublishErrors counts a failed snapshot publish for sink.
func IncPublishErrors(sink string) {
	publishErrorsTotal.WithLabelValues(sink).Inc()
}

func IncStreamConnections(event string) {
	streamConnectionsTotal.WithLabelValues(event).Inc()
}

func IncStreamsActive() {
	streamsActive.Inc()
}

func DecStreamsActive() {
	streamsActive.Dec()
}

func IncStreamMessages() {
	streamMessagesTotal.Inc()
}

func AddStreamBytes(n int64) {
	streamBytesTotal.Add(float64(n))
}

func IncStreamErrors(reason string) {
	streamErrorsTotal.WithLabelValues(reason).Inc()
}

// knownRoutes are the exact paths served by the API. Anything else is
// labelled "other" to keep label cardinality bounded.
var knownRoutes = map[string]bool{
	"/":                        true,
	"/healthz":                 true,
	"/readyz":                  true,
	"/metrics":                 true,
	"/api/v1/snapshot":         true,
	"/api/v1/report":           true,
	"/api/v1/stream/snapshots": true,
}

// normalizeRoute maps a request path to a bounded metric label.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush lets SSE handlers flush through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
