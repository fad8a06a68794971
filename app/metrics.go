package app

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the request collectors. A nil *metrics records nothing.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// WithMetrics registers request counters and latency histograms, labelled
// by endpoint, blueprint, method and status, with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(a *App) error {
		if reg == nil {
			return errors.New("metrics registerer cannot be nil")
		}
		a.metrics = newMetrics(reg)
		return nil
	}
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	labels := []string{"endpoint", "blueprint", "method", "status"}
	return &metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blueprint_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			labels,
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blueprint_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			labels,
		),
	}
}

func (m *metrics) observe(c *Context, status int, d time.Duration) {
	if m == nil {
		return
	}
	values := []string{c.endpoint, c.Blueprint(), c.r.Method, strconv.Itoa(status)}
	m.requests.WithLabelValues(values...).Inc()
	m.duration.WithLabelValues(values...).Observe(d.Seconds())
}
