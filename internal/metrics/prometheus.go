package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus keeps its own registry so tests can build independent instances.
type Prometheus struct {
	registry         *prometheus.Registry
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ordering_bff",
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total upstream requests by system and outcome.",
			},
			[]string{"system", "method", "outcome"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ordering_bff",
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Duration of upstream requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"system"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ordering_bff",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total inbound HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ordering_bff",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of inbound HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"method", "route"},
		),
	}
	p.registry.MustRegister(p.upstreamRequests, p.upstreamDuration, p.httpRequests, p.httpDuration)
	return p
}

// ObserveUpstream implements Recorder.
func (p *Prometheus) ObserveUpstream(system, method string, status int, elapsed time.Duration) {
	p.upstreamRequests.WithLabelValues(system, method, Outcome(status)).Inc()
	p.upstreamDuration.WithLabelValues(system).Observe(elapsed.Seconds())
}

// Middleware records inbound requests by route template.
func (p *Prometheus) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		p.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		p.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Outcome buckets an upstream status into success, client_error,
// server_error or transport_error.
func Outcome(status int) string {
	switch {
	case status == 0:
		return "transport_error"
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return "success"
	}
}
