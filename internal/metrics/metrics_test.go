package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := New("accessor", reg, reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/todos/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/todos/a", "/todos/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("accessor", "GET", "/todos/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("accessor", "GET", "unmatched", "404")))
}

func TestObserveQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("manager", reg, reg)
	m.ObserveQuery("dapr", OutcomeNotFound)
	m.ObserveQuery("dapr", OutcomeNotFound)
	m.ObserveQuery("http", OutcomeError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queryClient.WithLabelValues("dapr", OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryClient.WithLabelValues("http", OutcomeError)))

	var none *Metrics
	assert.NotPanics(t, func() { none.ObserveQuery("http", OutcomeFound) })
}

func TestHandlerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("manager", reg, reg)
	m.ObserveQuery("http", OutcomeFound)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `todo_query_client_requests_total{outcome="found",transport="http"} 1`)
}

func TestNewSeparateGatherer(t *testing.T) {
	reg := prometheus.NewRegistry()
	other := prometheus.NewRegistry()
	m := New("manager", reg, other)
	m.ObserveQuery("http", OutcomeFound)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.NotContains(t, rec.Body.String(), "todo_query_client_requests_total")

	count, err := testutil.GatherAndCount(reg, "todo_query_client_requests_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
