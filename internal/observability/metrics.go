package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the API and the verification
// flow. All increment methods are safe on a nil receiver so wiring metrics
// stays optional in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	loginSucceededTotal  prometheus.Counter
	loginRejectedTotal   *prometheus.CounterVec
	lockoutsCreatedTotal prometheus.Counter
	loginThrottledTotal  prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "auth_gate",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "auth_gate",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		loginSucceededTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "auth_gate",
				Name:      "logins_succeeded_total",
				Help:      "Total number of verifications that issued a token.",
			},
		),
		loginRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "auth_gate",
				Name:      "logins_rejected_total",
				Help:      "Total number of rejected verifications grouped by reason.",
			},
			[]string{"reason"},
		),
		lockoutsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "auth_gate",
				Name:      "lockouts_created_total",
				Help:      "Total number of lockout markers written by the verifier.",
			},
		),
		loginThrottledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "auth_gate",
				Name:      "logins_throttled_total",
				Help:      "Total number of login requests rejected by the per-client throttle.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.loginSucceededTotal,
		m.loginRejectedTotal,
		m.lockoutsCreatedTotal,
		m.loginThrottledTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncLoginSucceeded() {
	if m == nil {
		return
	}
	m.loginSucceededTotal.Inc()
}

func (m *Metrics) IncLoginRejected(reason string) {
	if m == nil {
		return
	}
	reasonLabel := strings.TrimSpace(strings.ToLower(reason))
	if reasonLabel == "" {
		reasonLabel = "unknown"
	}
	m.loginRejectedTotal.WithLabelValues(reasonLabel).Inc()
}

func (m *Metrics) IncLockoutCreated() {
	if m == nil {
		return
	}
	m.lockoutsCreatedTotal.Inc()
}

func (m *Metrics) IncLoginThrottled() {
	if m == nil {
		return
	}
	m.loginThrottledTotal.Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}
