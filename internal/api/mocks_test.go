package api

import (
	"context"
	"fmt"
	"io"

	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/internal/pricing"
	"github.com/nwca/sanmar-adapters/internal/quote"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// --- Mock Services ---

type mockPrices struct {
	resolveFn func(ctx context.Context, req pricing.Request) *pricing.Resolution
	last      pricing.Request
}

func (m *mockPrices) Resolve(ctx context.Context, req pricing.Request) *pricing.Resolution {
	m.last = req
	if m.resolveFn != nil {
		return m.resolveFn(ctx, req)
	}
	return &pricing.Resolution{Pricing: pricing.DefaultPricing(req.Style), Fallback: true}
}

type mockInventory struct {
	getFn func(ctx context.Context, style string) (*model.Inventory, error)
}

func (m *mockInventory) GetByStyle(ctx context.Context, style string) (*model.Inventory, error) {
	if m.getFn != nil {
		return m.getFn(ctx, style)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockProducts struct {
	getFn func(ctx context.Context, style string) (*model.Product, error)
}

func (m *mockProducts) Get(ctx context.Context, style string) (*model.Product, error) {
	if m.getFn != nil {
		return m.getFn(ctx, style)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockSuggester struct {
	suggestFn func(ctx context.Context, q string) []string
}

func (m *mockSuggester) Suggest(ctx context.Context, q string) []string {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, q)
	}
	return []string{}
}

type mockRenderer struct {
	renderFn func(w io.Writer, name string, data any) error
	page     string
	data     any
}

func (m *mockRenderer) Render(w io.Writer, name string, data any) error {
	m.page, m.data = name, data
	if m.renderFn != nil {
		return m.renderFn(w, name, data)
	}
	_, err := io.WriteString(w, "<html>"+name+"</html>")
	return err
}

type mockViews struct {
	inventoryFn func(ctx context.Context, style, color, size string) ([]caspio.InventoryView, error)
	pricingFn   func(ctx context.Context, style, color, size string) ([]caspio.PricingView, error)
	productFn   func(ctx context.Context, style, color, size string) ([]caspio.ProductView, error)
}

func (m *mockViews) InventoryViews(ctx context.Context, style, color, size string) ([]caspio.InventoryView, error) {
	if m.inventoryFn != nil {
		return m.inventoryFn(ctx, style, color, size)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockViews) PricingViews(ctx context.Context, style, color, size string) ([]caspio.PricingView, error) {
	if m.pricingFn != nil {
		return m.pricingFn(ctx, style, color, size)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockViews) ProductViews(ctx context.Context, style, color, size string) ([]caspio.ProductView, error) {
	if m.productFn != nil {
		return m.productFn(ctx, style, color, size)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockCustomerCatalog struct {
	categoriesFn    func(ctx context.Context) ([]string, error)
	subcategoriesFn func(ctx context.Context, category string) ([]string, error)
	searchFn        func(ctx context.Context, term string, page, pageSize int) ([]caspio.ProductRow, error)
}

func (m *mockCustomerCatalog) Categories(ctx context.Context) ([]string, error) {
	if m.categoriesFn != nil {
		return m.categoriesFn(ctx)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockCustomerCatalog) Subcategories(ctx context.Context, category string) ([]string, error) {
	if m.subcategoriesFn != nil {
		return m.subcategoriesFn(ctx, category)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockCustomerCatalog) SearchProducts(ctx context.Context, term string, page, pageSize int) ([]caspio.ProductRow, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, term, page, pageSize)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockQuotes struct {
	cartFn   func(ctx context.Context, cartID string) (*model.QuoteCart, error)
	addFn    func(ctx context.Context, cartID string, item model.QuoteItem) (*model.QuoteCart, error)
	updateFn func(ctx context.Context, cartID, itemID string, quantity int) (*model.QuoteCart, error)
	removeFn func(ctx context.Context, cartID, itemID string) (*model.QuoteCart, error)
	clearFn  func(ctx context.Context, cartID string) error
	submitFn func(ctx context.Context, cartID string, contact quote.Contact) (*model.QuoteRequest, error)
}

func (m *mockQuotes) Cart(ctx context.Context, cartID string) (*model.QuoteCart, error) {
	if m.cartFn != nil {
		return m.cartFn(ctx, cartID)
	}
	return &model.QuoteCart{ID: cartID}, nil
}

func (m *mockQuotes) AddItem(ctx context.Context, cartID string, item model.QuoteItem) (*model.QuoteCart, error) {
	if m.addFn != nil {
		return m.addFn(ctx, cartID, item)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockQuotes) UpdateItem(ctx context.Context, cartID, itemID string, quantity int) (*model.QuoteCart, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, cartID, itemID, quantity)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockQuotes) RemoveItem(ctx context.Context, cartID, itemID string) (*model.QuoteCart, error) {
	if m.removeFn != nil {
		return m.removeFn(ctx, cartID, itemID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockQuotes) Clear(ctx context.Context, cartID string) error {
	if m.clearFn != nil {
		return m.clearFn(ctx, cartID)
	}
	return nil
}

func (m *mockQuotes) Submit(ctx context.Context, cartID string, contact quote.Contact) (*model.QuoteRequest, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, cartID, contact)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockHealth struct {
	err error
}

func (m *mockHealth) HealthCheck(context.Context) error { return m.err }
