package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PrometheusRecorder exports metrics through a private Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	users    prometheus.Gauge
}

// NewPrometheus creates a recorder with its own registry, including the Go
// runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total requests",
		}, []string{"method", "endpoint", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "users_total",
			Help: "Total users",
		}),
	}

	p.registry.MustRegister(
		p.requests,
		p.duration,
		p.users,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return p
}

// Gatherer returns the registry backing this recorder.
func (p *PrometheusRecorder) Gatherer() prometheus.Gatherer {
	return p.registry
}

// ObserveRequest increments the request counter and records the duration.
func (p *PrometheusRecorder) ObserveRequest(method, endpoint string, status int, duration time.Duration) {
	p.duration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	p.requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// SetUsersTotal sets the users gauge.
func (p *PrometheusRecorder) SetUsersTotal(n int) {
	p.users.Set(float64(n))
}
