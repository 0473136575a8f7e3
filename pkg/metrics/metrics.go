package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	TotalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ConversionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conversion_duration_seconds",
			Help:    "Duration of one full birth-message conversion pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	ConversionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conversion_failures_total",
			Help: "Total number of failed conversion passes",
		},
	)

	ModelsEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_models_emitted_total",
			Help: "Total number of asset model records emitted",
		},
	)

	AssetsEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assets_emitted_total",
			Help: "Total number of asset records emitted",
		},
	)

	DuplicateRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_records_skipped_total",
			Help: "Records skipped because the destination key already existed",
		},
		[]string{"table"},
	)
)

func init() {
	prometheus.MustRegister(TotalRequests)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ConversionDuration)
	prometheus.MustRegister(ConversionFailures)
	prometheus.MustRegister(ModelsEmitted)
	prometheus.MustRegister(AssetsEmitted)
	prometheus.MustRegister(DuplicateRecords)
}

// Middleware instruments HTTP handlers with request count and duration.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		RequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
		TotalRequests.WithLabelValues(r.Method, r.URL.Path, http.StatusText(rw.status)).Inc()
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
