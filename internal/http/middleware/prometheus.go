package middleware

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMiddleware holds the HTTP metrics.
type PrometheusMiddleware struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authFailures    prometheus.Counter
}

// NewPrometheusMiddleware creates the collectors and registers them on reg.
func NewPrometheusMiddleware(reg prometheus.Registerer) (*PrometheusMiddleware, error) {
	m := &PrometheusMiddleware{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		authFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "auth_failures_total",
				Help: "Requests rejected by bearer token authentication.",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.requestCount, m.requestDuration, m.authFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// unmatchedPath labels requests that no route handled.
const unmatchedPath = "unmatched"

// Handler returns the fiber middleware handler. Requests are labelled with
// their route pattern (/products/:id), or unmatchedPath when only
// middleware ran. Routes are read once, on the first request.
func (m *PrometheusMiddleware) Handler() fiber.Handler {
	var (
		once   sync.Once
		routes map[string]struct{}
	)
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		once.Do(func() {
			routes = make(map[string]struct{})
			for _, r := range c.App().GetRoutes(true) {
				routes[r.Method+" "+r.Path] = struct{}{}
			}
		})
		path := unmatchedPath
		if r := c.Route(); r != nil {
			if _, ok := routes[r.Method+" "+r.Path]; ok {
				path = r.Path
			}
		}

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.requestCount.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())

		return err
	}
}

// AuthFailed counts a rejected bearer token. It satisfies AuthObserver.
func (m *PrometheusMiddleware) AuthFailed() {
	m.authFailures.Inc()
}
