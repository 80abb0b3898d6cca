package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/internal/quote"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// ─── Helpers ─────────────────────────────────────────────────────────────────

func newCustomerApp(cat CustomerCatalog, quotes QuoteService) *fiber.App {
	app := fiber.New()
	h := NewCustomerHandler(zap.NewNop(), cat, quotes)
	h.newID = func() string { return "cart-new" }
	g := app.Group("/customer/api")
	g.Get("/categories", h.Categories)
	g.Get("/subcategories/:category", h.Subcategories)
	g.Get("/search", h.Search)
	g.Get("/quote", h.GetQuote)
	g.Delete("/quote", h.ClearQuote)
	g.Post("/quote/items", h.AddItem)
	g.Put("/quote/items/:id", h.UpdateItem)
	g.Delete("/quote/items/:id", h.RemoveItem)
	g.Post("/quote/submit", h.SubmitQuote)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, url, body, cartID string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cartID != "" {
		req.AddCookie(&http.Cookie{Name: CartCookie, Value: cartID})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func cartCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == CartCookie {
			return c
		}
	}
	return nil
}

// ─── Browse ──────────────────────────────────────────────────────────────────

func TestCategories_List(t *testing.T) {
	cat := &mockCustomerCatalog{categoriesFn: func(context.Context) ([]string, error) {
		return []string{"T-Shirts", "Polos/Knits"}, nil
	}}
	resp := doGet(t, newCustomerApp(cat, &mockQuotes{}), "/customer/api/categories")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out ListResponse[string]
	decodeBody(t, resp, &out)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "Polos/Knits", out.Items[1])
}

func TestCategories_CaspioDisabled(t *testing.T) {
	resp := doGet(t, newCustomerApp(nil, &mockQuotes{}), "/customer/api/categories")

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.True(t, body.Error)
}

func TestSubcategories_UpstreamError(t *testing.T) {
	cat := &mockCustomerCatalog{subcategoriesFn: func(_ context.Context, category string) ([]string, error) {
		assert.Equal(t, "Outerwear", category)
		return nil, &caspio.APIError{Status: 500, Message: "boom"}
	}}
	resp := doGet(t, newCustomerApp(cat, &mockQuotes{}), "/customer/api/subcategories/Outerwear")

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestSearch_Paging(t *testing.T) {
	var gotPage, gotSize int
	cat := &mockCustomerCatalog{searchFn: func(_ context.Context, term string, page, size int) ([]caspio.ProductRow, error) {
		gotPage, gotSize = page, size
		return []caspio.ProductRow{{Style: "PC61", Title: "Essential Tee"}}, nil
	}}
	resp := doGet(t, newCustomerApp(cat, &mockQuotes{}), "/customer/api/search?q=tee&page=3&page_size=500")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, gotPage)
	assert.Equal(t, defaultPageSize, gotSize)
	var out SearchResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "tee", out.Query)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "PC61", out.Items[0].Style)
}

func TestSearch_RequiresQuery(t *testing.T) {
	resp := doGet(t, newCustomerApp(&mockCustomerCatalog{}, &mockQuotes{}), "/customer/api/search?q=%20")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// ─── Quote cart ──────────────────────────────────────────────────────────────

func TestGetQuote_IssuesCookie(t *testing.T) {
	resp := doJSON(t, newCustomerApp(nil, &mockQuotes{}), http.MethodGet, "/customer/api/quote", "", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	c := cartCookie(resp)
	require.NotNil(t, c)
	assert.Equal(t, "cart-new", c.Value)
	assert.True(t, c.HttpOnly)

	var out CartResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "cart-new", out.ID)
	assert.NotNil(t, out.Items)
	assert.Zero(t, out.ItemCount)
}

func TestGetQuote_ReusesCookie(t *testing.T) {
	var got string
	quotes := &mockQuotes{cartFn: func(_ context.Context, id string) (*model.QuoteCart, error) {
		got = id
		return &model.QuoteCart{ID: id, Items: []model.QuoteItem{{ID: "i1", Quantity: 2, UnitPrice: 3.5}}}, nil
	}}
	resp := doJSON(t, newCustomerApp(nil, quotes), http.MethodGet, "/customer/api/quote", "", "cart-1")

	assert.Equal(t, "cart-1", got)
	assert.Nil(t, cartCookie(resp))
	var out CartResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, 1, out.ItemCount)
	assert.InDelta(t, 7.0, out.Subtotal, 1e-9)
}

func TestAddItem_Created(t *testing.T) {
	var got model.QuoteItem
	quotes := &mockQuotes{addFn: func(_ context.Context, id string, item model.QuoteItem) (*model.QuoteCart, error) {
		got = item
		item.ID = "i1"
		return &model.QuoteCart{ID: id, Items: []model.QuoteItem{item}}, nil
	}}
	resp := doJSON(t, newCustomerApp(nil, quotes), http.MethodPost, "/customer/api/quote/items",
		`{"style":"pc61","color":"Black","size":"L","quantity":12}`, "cart-1")

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pc61", got.Style)
	assert.Equal(t, 12, got.Quantity)
}

func TestAddItem_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"missing style", `{"size":"L","quantity":1}`, "style: is required"},
		{"missing size", `{"style":"PC61","quantity":1}`, "size: is required"},
		{"zero quantity", `{"style":"PC61","size":"L","quantity":0}`, "quantity: must be positive"},
		{"negative price", `{"style":"PC61","size":"L","quantity":1,"unit_price":-1}`, "unit_price: must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, newCustomerApp(nil, &mockQuotes{}), http.MethodPost, "/customer/api/quote/items", tt.body, "c")
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			var body ErrorResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.msg, body.Message)
		})
	}
}

func TestAddItem_BadJSON(t *testing.T) {
	resp := doJSON(t, newCustomerApp(nil, &mockQuotes{}), http.MethodPost, "/customer/api/quote/items", `{`, "c")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateItem_NotFound(t *testing.T) {
	quotes := &mockQuotes{updateFn: func(_ context.Context, _, itemID string, qty int) (*model.QuoteCart, error) {
		assert.Equal(t, "missing", itemID)
		assert.Equal(t, 5, qty)
		return nil, quote.ErrItemNotFound
	}}
	resp := doJSON(t, newCustomerApp(nil, quotes), http.MethodPut, "/customer/api/quote/items/missing", `{"quantity":5}`, "c")

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRemoveItem_OK(t *testing.T) {
	quotes := &mockQuotes{removeFn: func(_ context.Context, id, itemID string) (*model.QuoteCart, error) {
		return &model.QuoteCart{ID: id}, nil
	}}
	resp := doJSON(t, newCustomerApp(nil, quotes), http.MethodDelete, "/customer/api/quote/items/i1", "", "c")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestClearQuote_Error(t *testing.T) {
	quotes := &mockQuotes{clearFn: func(context.Context, string) error { return errors.New("redis down") }}
	resp := doJSON(t, newCustomerApp(nil, quotes), http.MethodDelete, "/customer/api/quote", "", "c")

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestSubmitQuote_ClearsCookie(t *testing.T) {
	var got quote.Contact
	quotes := &mockQuotes{submitFn: func(_ context.Context, id string, c quote.Contact) (*model.QuoteRequest, error) {
		got = c
		return &model.QuoteRequest{ID: "q1", CartID: id, Name: c.Name, Email: c.Email, SubmittedAt: time.Now()}, nil
	}}
	resp := doJSON(t, newCustomerApp(nil, quotes), http.MethodPost, "/customer/api/quote/submit",
		`{"name":"Pat","email":"pat@example.com","company":"Acme"}`, "cart-1")

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Acme", got.Company)
	c := cartCookie(resp)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)

	var out model.QuoteRequest
	decodeBody(t, resp, &out)
	assert.Equal(t, "q1", out.ID)
	assert.Equal(t, "cart-1", out.CartID)
}

func TestSubmitQuote_EmptyCart(t *testing.T) {
	quotes := &mockQuotes{submitFn: func(context.Context, string, quote.Contact) (*model.QuoteRequest, error) {
		return nil, quote.ErrEmptyCart
	}}
	resp := doJSON(t, newCustomerApp(nil, quotes), http.MethodPost, "/customer/api/quote/submit", `{"name":"Pat","email":"pat@example.com"}`, "c")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var body ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, quote.ErrEmptyCart.Error(), body.Message)
}
