package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	// Fresh registry per test avoids duplicate registration.
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	return app, m, reg
}

func TestPrometheusMiddleware(t *testing.T) {
	app, m, _ := newPromApp(t)

	app.Get("/products", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Delete("/products", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/error", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad request")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/products", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/products", "200")))

	_, err = app.Test(httptest.NewRequest("DELETE", "/products", nil))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("DELETE", "/products", "204")))

	_, err = app.Test(httptest.NewRequest("GET", "/error", nil))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/error", "400")))
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	app, _, reg := newPromApp(t)

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "http_requests_total" {
			assert.Empty(t, mf.GetMetric())
		}
	}
}

func TestPrometheusMiddleware_UnmatchedRoutes(t *testing.T) {
	app, m, _ := newPromApp(t)
	app.Get("/products/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for _, p := range []string{"/wp-admin", "/products", "/a/b/c", "/.env"} {
		resp, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	}

	assert.Equal(t, 4.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestCount))
}

func TestPrometheusMiddleware_PathPattern(t *testing.T) {
	app, m, _ := newPromApp(t)

	app.Get("/products/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/products/123", nil))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/products/:id", "200")))
	assert.NotZero(t, testutil.CollectAndCount(m.requestDuration))
}

func TestPrometheusMiddleware_AuthFailures(t *testing.T) {
	_, m, _ := newPromApp(t)

	m.AuthFailed()
	m.AuthFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authFailures))
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
