package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	notificationDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_notification_decisions_total",
			Help: "Gateway notification outcomes by decision code",
		},
		[]string{"processor", "decision"},
	)

	refundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_refunds_total",
			Help: "Refund attempts by outcome",
		},
		[]string{"processor", "outcome"},
	)
)

// RecordNotificationDecision counts a processed gateway notification.
func RecordNotificationDecision(processor, decision string) {
	notificationDecisionsTotal.WithLabelValues(processor, decision).Inc()
}

// RecordRefund counts a refund attempt.
// outcome: "accepted", "rejected" or "failed".
func RecordRefund(processor, outcome string) {
	refundsTotal.WithLabelValues(processor, outcome).Inc()
}

// statusRecorder captures the response status for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// HTTPMiddleware records request counts, durations and in-flight gauge for
// every request passing through it.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		httpRequestDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(recorder.status)).Inc()
	})
}
