// Package metrics holds the prometheus collectors shared by the accessor and
// manager services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query-client outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	queryClient  *prometheus.CounterVec
	gatherer     prometheus.Gatherer
	serviceLabel string
}

// New registers the collectors on reg and serves /metrics from g. Both are
// usually the same *prometheus.Registry; tests pass a fresh one.
func New(service string, reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_http_requests_total",
			Help: "HTTP requests handled, by route and status.",
		}, []string{"service", "method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "todo_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),
		queryClient: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_query_client_requests_total",
			Help: "Accessor lookups made by the manager, by transport and outcome.",
		}, []string{"transport", "outcome"}),
		gatherer:     g,
		serviceLabel: service,
	}
	reg.MustRegister(m.requests, m.duration, m.queryClient)
	return m
}

// Middleware records one observation per request. Unmatched routes are
// labelled "unmatched" to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(m.serviceLabel, c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(m.serviceLabel, c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveQuery counts one query-client call. A nil receiver is a no-op.
func (m *Metrics) ObserveQuery(transport, outcome string) {
	if m == nil {
		return
	}
	m.queryClient.WithLabelValues(transport, outcome).Inc()
}
