package api

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/caspio"
)

func newCaspioApp(views CaspioViews) *fiber.App {
	app := fiber.New()
	h := NewCaspioHandler(zap.NewNop(), views)
	g := app.Group("/caspio/api")
	g.Get("/inventory/:style", h.Inventory)
	g.Get("/pricing/:style", h.Pricing)
	g.Get("/product/:style", h.Product)
	return app
}

func TestCaspioInventory_Filters(t *testing.T) {
	var style, color, size string
	views := &mockViews{inventoryFn: func(_ context.Context, s, c, z string) ([]caspio.InventoryView, error) {
		style, color, size = s, c, z
		return []caspio.InventoryView{{Style: s, Color: c, Size: z, WarehouseID: "1", Quantity: 9}}, nil
	}}
	resp := doGet(t, newCaspioApp(views), "/caspio/api/inventory/pc61?color=Black&size=XXL")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "PC61", style)
	assert.Equal(t, "Black", color)
	assert.Equal(t, "2XL", size)

	var out ListResponse[caspio.InventoryView]
	decodeBody(t, resp, &out)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, 9, out.Items[0].Quantity)
}

func TestCaspioPricing_EmptyList(t *testing.T) {
	views := &mockViews{pricingFn: func(context.Context, string, string, string) ([]caspio.PricingView, error) {
		return nil, nil
	}}
	resp := doGet(t, newCaspioApp(views), "/caspio/api/pricing/PC61")

	var out ListResponse[caspio.PricingView]
	decodeBody(t, resp, &out)
	assert.NotNil(t, out.Items)
	assert.Zero(t, out.Count)
}

func TestCaspioProduct_Unauthorized(t *testing.T) {
	views := &mockViews{productFn: func(context.Context, string, string, string) ([]caspio.ProductView, error) {
		return nil, caspio.ErrUnauthorized
	}}
	resp := doGet(t, newCaspioApp(views), "/caspio/api/product/PC61")

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.True(t, body.Error)
	assert.Equal(t, caspio.ErrUnauthorized.Error(), body.Message)
}

func TestCaspio_NotConfigured(t *testing.T) {
	resp := doGet(t, newCaspioApp(nil), "/caspio/api/inventory/PC61")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
