package api

import (
	"context"
	"io"

	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/internal/pricing"
	"github.com/nwca/sanmar-adapters/internal/quote"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// PricingResolver answers pricing lookups; it never fails.
type PricingResolver interface {
	Resolve(ctx context.Context, req pricing.Request) *pricing.Resolution
}

// InventoryService returns live or fallback inventory for a style.
type InventoryService interface {
	GetByStyle(ctx context.Context, style string) (*model.Inventory, error)
}

// ProductService returns live or fallback product data for a style.
type ProductService interface {
	Get(ctx context.Context, style string) (*model.Product, error)
}

// Suggester backs the search box.
type Suggester interface {
	Suggest(ctx context.Context, q string) []string
}

// CacheClearer is anything /clear-cache should flush.
type CacheClearer interface {
	ClearCache(ctx context.Context) (int, error)
}

// ClearFunc adapts a function to CacheClearer.
type ClearFunc func(ctx context.Context) (int, error)

func (f ClearFunc) ClearCache(ctx context.Context) (int, error) { return f(ctx) }

// Renderer executes a named HTML page.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// CaspioViews is the read side of the Caspio catalog tables.
type CaspioViews interface {
	InventoryViews(ctx context.Context, style, color, size string) ([]caspio.InventoryView, error)
	PricingViews(ctx context.Context, style, color, size string) ([]caspio.PricingView, error)
	ProductViews(ctx context.Context, style, color, size string) ([]caspio.ProductView, error)
}

// CustomerCatalog is the browse/search side of the Caspio product table.
type CustomerCatalog interface {
	Categories(ctx context.Context) ([]string, error)
	Subcategories(ctx context.Context, category string) ([]string, error)
	SearchProducts(ctx context.Context, term string, page, pageSize int) ([]caspio.ProductRow, error)
}

// QuoteService manages the customer quote cart.
type QuoteService interface {
	Cart(ctx context.Context, cartID string) (*model.QuoteCart, error)
	AddItem(ctx context.Context, cartID string, item model.QuoteItem) (*model.QuoteCart, error)
	UpdateItem(ctx context.Context, cartID, itemID string, quantity int) (*model.QuoteCart, error)
	RemoveItem(ctx context.Context, cartID, itemID string) (*model.QuoteCart, error)
	Clear(ctx context.Context, cartID string) error
	Submit(ctx context.Context, cartID string, contact quote.Contact) (*model.QuoteRequest, error)
}
