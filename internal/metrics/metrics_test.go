package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerSaved(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CustomerSaved(true)
	m.CustomerSaved(true)
	m.CustomerSaved(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.customerSaves.WithLabelValues("insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.customerSaves.WithLabelValues("update")))
}

func TestEventPublished(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.EventPublished(nil)
	m.EventPublished(errors.New("broker down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("error")))
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg)
	second := New(reg)

	first.CustomerSaved(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(second.customerSaves.WithLabelValues("insert")))
}

func TestMiddlewareCountsByRoute(t *testing.T) {
	m := New(prometheus.NewRegistry())
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/v1/customers/:id", func(c echo.Context) error {
		if c.Param("id") == "0" {
			return echo.NewHTTPError(http.StatusBadRequest, "bad id")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/v1/customers/1", "/v1/customers/2", "/v1/customers/0"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/customers/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/customers/:id", "400")))
	require.Equal(t, 1, testutil.CollectAndCount(m.duration))
}
