package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/inventory"
	"github.com/nwca/sanmar-adapters/internal/pricing"
	"github.com/nwca/sanmar-adapters/internal/web"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// ─── Helpers ─────────────────────────────────────────────────────────────────

type catalogDeps struct {
	prices   *mockPrices
	inv      *mockInventory
	products *mockProducts
	suggest  *mockSuggester
	pages    *mockRenderer
}

func newCatalogDeps() *catalogDeps {
	return &catalogDeps{
		prices: &mockPrices{},
		inv: &mockInventory{getFn: func(_ context.Context, style string) (*model.Inventory, error) {
			inv := model.NewInventory(style, model.SourceSanMar)
			inv.Level("Black", "M").Add("1", 4)
			return inv, nil
		}},
		products: &mockProducts{getFn: func(_ context.Context, style string) (*model.Product, error) {
			return &model.Product{Style: style, Title: "Tee", Colors: []string{"Black", "Navy"}, Sizes: []string{"M"}, Source: model.SourceSanMar}, nil
		}},
		suggest: &mockSuggester{},
		pages:   &mockRenderer{},
	}
}

func newCatalogApp(d *catalogDeps, clearers ...CacheClearer) *fiber.App {
	app := fiber.New()
	h := NewCatalogHandler(zap.NewNop(), d.prices, d.inv, d.products, d.suggest, d.pages, clearers...)
	app.Get("/", h.Index)
	app.Get("/product/:style", h.ProductPage)
	app.Get("/api/autocomplete", h.Autocomplete)
	app.Get("/api/pricing", h.Pricing)
	app.Get("/api/inventory/:style", h.Inventory)
	app.Get("/api/inventory/:style/export", h.InventoryExport)
	app.Get("/api/product/:style", h.Product)
	app.Post("/clear-cache", h.ClearCache)
	return app
}

func doGet(t *testing.T, app *fiber.App, url string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil), -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v), string(body))
}

// ─── Pages ───────────────────────────────────────────────────────────────────

func TestIndex_RendersKnownStyles(t *testing.T) {
	d := newCatalogDeps()
	resp := doGet(t, newCatalogApp(d), "/")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, web.PageIndex, d.pages.page)
	page := d.pages.data.(web.IndexPage)
	assert.Contains(t, page.Styles, "PC61")
}

func TestProductPage_DefaultsToFirstColor(t *testing.T) {
	d := newCatalogDeps()
	resp := doGet(t, newCatalogApp(d), "/product/pc61?color=Orange")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	page := d.pages.data.(web.ProductPage)
	assert.Equal(t, "PC61", page.Product.Style)
	assert.Equal(t, "Black", page.SelectedColor)
	assert.Equal(t, []string{"Black", "Navy"}, d.prices.last.CatalogColors)
	assert.NotEmpty(t, page.Warehouses)
}

func TestProductPage_KeepsKnownColor(t *testing.T) {
	d := newCatalogDeps()
	doGet(t, newCatalogApp(d), "/product/PC61?color=Navy")

	assert.Equal(t, "Navy", d.pages.data.(web.ProductPage).SelectedColor)
}

func TestProductPage_RenderFailure(t *testing.T) {
	d := newCatalogDeps()
	d.pages.renderFn = func(io.Writer, string, any) error { return errors.New("bad template") }

	resp := doGet(t, newCatalogApp(d), "/product/PC61")

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.True(t, body.Error)
	assert.Equal(t, "render failed", body.Message)
}

// ─── JSON API ────────────────────────────────────────────────────────────────

func TestAutocomplete_PassesQuery(t *testing.T) {
	d := newCatalogDeps()
	var got string
	d.suggest.suggestFn = func(_ context.Context, q string) []string {
		got = q
		return []string{"PC61", "PC61LS"}
	}

	resp := doGet(t, newCatalogApp(d), "/api/autocomplete?q=pc6")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "pc6", got)
	var out []string
	decodeBody(t, resp, &out)
	assert.Equal(t, []string{"PC61", "PC61LS"}, out)
}

func TestAutocomplete_EmptyListNotNull(t *testing.T) {
	resp := doGet(t, newCatalogApp(newCatalogDeps()), "/api/autocomplete?q=p")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}

func TestPricing_RequiresStyle(t *testing.T) {
	resp := doGet(t, newCatalogApp(newCatalogDeps()), "/api/pricing")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.True(t, body.Error)
	assert.Equal(t, "style is required", body.Message)
}

func TestPricing_NormalizesRequest(t *testing.T) {
	d := newCatalogDeps()
	d.prices.resolveFn = func(_ context.Context, req pricing.Request) *pricing.Resolution {
		p := &model.Pricing{Style: req.Style, PriceSet: model.NewPriceSet(), Source: pricing.SourceService}
		p.Sale[req.Size] = 4.25
		return &pricing.Resolution{Pricing: p}
	}

	resp := doGet(t, newCatalogApp(d), "/api/pricing?style=pc61&color=Black&size=XXL")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "PC61", d.prices.last.Style)
	assert.Equal(t, "2XL", d.prices.last.Size)
	assert.Equal(t, "Black", d.prices.last.Color)

	var out map[string]any
	decodeBody(t, resp, &out)
	assert.Equal(t, pricing.SourceService, out["source"])
	assert.Equal(t, false, out["fallback"])
	assert.Equal(t, 4.25, out["sale_price"].(map[string]any)["2XL"])
}

func TestPricing_FallbackFlagged(t *testing.T) {
	d := newCatalogDeps()
	d.products.getFn = func(_ context.Context, style string) (*model.Product, error) {
		return &model.Product{Style: style, Colors: []string{"Mock"}, Source: model.SourceMock}, nil
	}

	resp := doGet(t, newCatalogApp(d), "/api/pricing?style=PC61")

	var out map[string]any
	decodeBody(t, resp, &out)
	assert.Equal(t, true, out["fallback"])
	assert.Equal(t, pricing.SourceDefault, out["source"])
	assert.Nil(t, d.prices.last.CatalogColors, "mock product colors are not used for reconciliation")
}

func TestInventory_ReturnsLevels(t *testing.T) {
	resp := doGet(t, newCatalogApp(newCatalogDeps()), "/api/inventory/PC61")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var inv model.Inventory
	decodeBody(t, resp, &inv)
	assert.Equal(t, "PC61", inv.Style)
	assert.Equal(t, 4, inv.Colors["Black"]["M"].Total)
	assert.Equal(t, model.SourceSanMar, inv.Source)
}

func TestInventory_BlankStyleIsBadRequest(t *testing.T) {
	d := newCatalogDeps()
	d.inv.getFn = func(context.Context, string) (*model.Inventory, error) {
		return nil, inventory.ErrStyleRequired
	}

	resp := doGet(t, newCatalogApp(d), "/api/inventory/%20")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestInventoryExport_Workbook(t *testing.T) {
	resp := doGet(t, newCatalogApp(newCatalogDeps()), "/api/inventory/PC61/export")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "PC61_inventory.xlsx")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(body[:2]))
}

func TestProduct_ReturnsJSON(t *testing.T) {
	resp := doGet(t, newCatalogApp(newCatalogDeps()), "/api/product/PC61")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var p model.Product
	decodeBody(t, resp, &p)
	assert.Equal(t, "Tee", p.Title)
}

// ─── Clear cache ─────────────────────────────────────────────────────────────

func TestClearCache_SumsClearers(t *testing.T) {
	app := newCatalogApp(newCatalogDeps(),
		ClearFunc(func(context.Context) (int, error) { return 3, nil }),
		ClearFunc(func(context.Context) (int, error) { return 2, nil }),
	)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/clear-cache", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out ClearCacheResponse
	decodeBody(t, resp, &out)
	assert.True(t, out.Success)
	assert.Equal(t, 5, out.Cleared)
}

func TestClearCache_Failure(t *testing.T) {
	app := newCatalogApp(newCatalogDeps(),
		ClearFunc(func(context.Context) (int, error) { return 0, errors.New("redis down") }),
	)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/clear-cache", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "redis down", body.Message)
}
