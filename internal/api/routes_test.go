package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRoutedApp(st HealthChecker) *fiber.App {
	d := newCatalogDeps()
	app := fiber.New()
	RegisterRoutes(app, nil, st, Handlers{
		Catalog:  NewCatalogHandler(zap.NewNop(), d.prices, d.inv, d.products, d.suggest, d.pages),
		Caspio:   NewCaspioHandler(zap.NewNop(), nil),
		Customer: NewCustomerHandler(zap.NewNop(), nil, &mockQuotes{}),
	})
	return app
}

func TestHealth_NoDependencies(t *testing.T) {
	resp := doGet(t, newRoutedApp(nil), "/health")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, "disabled", out.Checks["nats"])
	assert.Equal(t, "disabled", out.Checks["store"])
}

func TestHealth_StoreDown(t *testing.T) {
	resp := doGet(t, newRoutedApp(&mockHealth{err: errors.New("redis ping failed")}), "/health")

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	var out struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "degraded", out.Status)
	assert.Equal(t, "redis ping failed", out.Checks["store"])
}

func TestRoutes_Mounted(t *testing.T) {
	app := newRoutedApp(&mockHealth{})

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", fiber.StatusOK},
		{http.MethodGet, "/autocomplete?q=pc", fiber.StatusOK},
		{http.MethodGet, "/api/autocomplete?q=pc", fiber.StatusOK},
		{http.MethodGet, "/api/product/PC61", fiber.StatusOK},
		{http.MethodGet, "/api/inventory/PC61", fiber.StatusOK},
		{http.MethodGet, "/caspio/api/pricing/PC61", fiber.StatusServiceUnavailable},
		{http.MethodGet, "/customer/api/quote", fiber.StatusOK},
		{http.MethodGet, "/metrics", fiber.StatusOK},
		{http.MethodGet, "/nope", fiber.StatusNotFound},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, tc.path)
	}
}
