package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eom"

// Recorder holds the service counters. It satisfies the metrics sink of the
// core and the request observer of the router.
type Recorder struct {
	statusUpdates  *prometheus.CounterVec
	statusRejected *prometheus.CounterVec
	logins         *prometheus.CounterVec
	requests       *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		statusUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_status_updates_total",
				Help:      "Total number of applied order status transitions",
			},
			[]string{"from", "to"},
		),
		statusRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_status_rejected_total",
				Help:      "Total number of rejected status update requests",
			},
			[]string{"reason"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Total number of login attempts",
			},
			[]string{"result"},
		),
		requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
	}
	reg.MustRegister(r.statusUpdates, r.statusRejected, r.logins, r.requests)
	return r
}

func (r *Recorder) StatusUpdated(from, to string) {
	r.statusUpdates.WithLabelValues(from, to).Inc()
}

func (r *Recorder) StatusRejected(reason string) {
	r.statusRejected.WithLabelValues(reason).Inc()
}

func (r *Recorder) LoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	r.logins.WithLabelValues(result).Inc()
}

func (r *Recorder) ObserveRequest(method, route string, code int, duration time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(duration.Seconds())
}
