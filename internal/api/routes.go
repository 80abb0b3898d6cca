package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Catalog  *CatalogHandler
	Caspio   *CaspioHandler
	Customer *CustomerHandler
}

// RegisterRoutes mounts the pages, JSON API, health and metrics. nc and st may
// be nil when no broker or store is configured.
func RegisterRoutes(app *fiber.App, nc *nats.Conn, st HealthChecker, h Handlers) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"nats":  "disabled",
			"store": "disabled",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc != nil {
			checks["nats"] = "ok"
			if !nc.IsConnected() {
				checks["nats"] = "disconnected"
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
				checks["nats"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		if st != nil {
			checks["store"] = "ok"
			healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := st.HealthCheck(healthCtx); err != nil {
				checks["store"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	// Pages and SanMar-backed API
	cat := h.Catalog
	app.Get("/", cat.Index)
	app.Get("/product/:style", cat.ProductPage)
	app.Get("/autocomplete", cat.Autocomplete)
	app.Post("/clear-cache", cat.ClearCache)

	apiGroup := app.Group("/api")
	apiGroup.Get("/autocomplete", cat.Autocomplete)
	apiGroup.Get("/pricing", cat.Pricing)
	apiGroup.Get("/inventory/:style", cat.Inventory)
	apiGroup.Get("/inventory/:style/export", cat.InventoryExport)
	apiGroup.Get("/product/:style", cat.Product)

	// Caspio-backed views
	cas := app.Group("/caspio/api")
	cas.Get("/inventory/:style", h.Caspio.Inventory)
	cas.Get("/pricing/:style", h.Caspio.Pricing)
	cas.Get("/product/:style", h.Caspio.Product)

	// Customer catalog and quote cart
	cust := app.Group("/customer/api")
	cust.Get("/categories", h.Customer.Categories)
	cust.Get("/subcategories/:category", h.Customer.Subcategories)
	cust.Get("/search", h.Customer.Search)
	cust.Get("/quote", h.Customer.GetQuote)
	cust.Delete("/quote", h.Customer.ClearQuote)
	cust.Post("/quote/items", h.Customer.AddItem)
	cust.Put("/quote/items/:id", h.Customer.UpdateItem)
	cust.Delete("/quote/items/:id", h.Customer.RemoveItem)
	cust.Post("/quote/submit", h.Customer.SubmitQuote)
}
