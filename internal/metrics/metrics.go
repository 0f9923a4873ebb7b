// Package metrics exposes Prometheus instrumentation for the HTTP API and
// for customer writes.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors registered by New.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	customerSaves *prometheus.CounterVec
	events        *prometheus.CounterVec
}

// New registers the collectors on registerer (the default registerer when
// nil).  Collectors already registered by an earlier call are reused.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Metrics{
		requests: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lunchly_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"})),
		duration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lunchly_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})),
		customerSaves: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lunchly_customer_saves_total",
			Help: "Total number of customer saves by operation",
		}, []string{"op"})),
		events: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lunchly_customer_events_total",
			Help: "Total number of customer.saved events by publish result",
		}, []string{"result"})),
	}
}

func register[C prometheus.Collector](registerer prometheus.Registerer, c C) C {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// CustomerSaved counts a successful customer save.
func (m *Metrics) CustomerSaved(inserted bool) {
	op := "update"
	if inserted {
		op = "insert"
	}
	m.customerSaves.WithLabelValues(op).Inc()
}

// EventPublished counts a customer.saved publish attempt.
func (m *Metrics) EventPublished(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.events.WithLabelValues(result).Inc()
}
