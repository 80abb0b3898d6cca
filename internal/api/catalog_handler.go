package api

import (
	"bytes"
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/internal/inventory"
	"github.com/nwca/sanmar-adapters/internal/pricing"
	"github.com/nwca/sanmar-adapters/internal/web"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CatalogHandler serves the product pages and the SanMar-backed JSON API.
type CatalogHandler struct {
	logger    *zap.Logger
	prices    PricingResolver
	inventory InventoryService
	products  ProductService
	suggest   Suggester
	pages     Renderer
	clearers  []CacheClearer
	title     string
}

// NewCatalogHandler creates a CatalogHandler. pages may be nil, in which case
// the HTML routes answer with JSON errors.
func NewCatalogHandler(logger *zap.Logger, prices PricingResolver, inv InventoryService,
	products ProductService, suggest Suggester, pages Renderer, clearers ...CacheClearer) *CatalogHandler {
	return &CatalogHandler{
		logger:    logger,
		prices:    prices,
		inventory: inv,
		products:  products,
		suggest:   suggest,
		pages:     pages,
		clearers:  clearers,
		title:     "Northwest Custom Apparel",
	}
}

// Index renders the landing page.
func (h *CatalogHandler) Index(c *fiber.Ctx) error {
	return h.render(c, web.PageIndex, web.IndexPage{Title: h.title, Styles: catalog.KnownStyles})
}

// ProductPage renders one style with inventory and pricing for the selected color.
func (h *CatalogHandler) ProductPage(c *fiber.Ctx) error {
	style := normalizeStyle(c.Params("style"))
	if style == "" {
		return fail(c, fiber.StatusBadRequest, "style is required")
	}
	ctx := c.UserContext()

	p, err := h.products.Get(ctx, style)
	if err != nil {
		return failErr(c, err)
	}
	selected := c.Query("color")
	if !p.HasColor(selected) && len(p.Colors) > 0 {
		selected = p.Colors[0]
	}

	inv, err := h.inventory.GetByStyle(ctx, style)
	if err != nil {
		h.logger.Warn("catalog.page_inventory_failed", zap.String("style", style), zap.Error(err))
	}
	res := h.prices.Resolve(ctx, pricing.Request{Style: style, CatalogColors: p.Colors})

	return h.render(c, web.PageProduct, web.ProductPage{
		Product:       p,
		SelectedColor: selected,
		Inventory:     inv,
		Pricing:       res.Pricing,
		Warehouses:    catalog.Warehouses(),
	})
}

// Autocomplete returns up to ten matching style numbers.
func (h *CatalogHandler) Autocomplete(c *fiber.Ctx) error {
	return c.JSON(h.suggest.Suggest(c.UserContext(), c.Query("q")))
}

// Pricing resolves pricing for ?style=&color=&size=.
func (h *CatalogHandler) Pricing(c *fiber.Ctx) error {
	style := normalizeStyle(c.Query("style"))
	if style == "" {
		return fail(c, fiber.StatusBadRequest, "style is required")
	}
	ctx := c.UserContext()
	req := pricing.Request{
		Style:         style,
		Color:         strings.TrimSpace(c.Query("color")),
		Size:          catalog.NormalizeSize(strings.TrimSpace(c.Query("size"))),
		CatalogColors: h.catalogColors(ctx, style),
	}
	res := h.prices.Resolve(ctx, req)
	if res.Fallback {
		h.logger.Warn("catalog.pricing_fallback",
			zap.String("style", style),
			zap.Int("attempts", len(res.Attempts)))
	}
	return c.JSON(PricingResponse{Pricing: res.Pricing, Fallback: res.Fallback})
}

// Inventory returns the warehouse breakdown for a style.
func (h *CatalogHandler) Inventory(c *fiber.Ctx) error {
	inv, err := h.inventory.GetByStyle(c.UserContext(), c.Params("style"))
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(inv)
}

// InventoryExport streams the inventory of a style as an xlsx workbook.
func (h *CatalogHandler) InventoryExport(c *fiber.Ctx) error {
	style := normalizeStyle(c.Params("style"))
	ctx := c.UserContext()
	inv, err := h.inventory.GetByStyle(ctx, style)
	if err != nil {
		return failErr(c, err)
	}
	res := h.prices.Resolve(ctx, pricing.Request{Style: style})

	var buf bytes.Buffer
	if err := inventory.WriteXLSX(&buf, inv, res.Pricing); err != nil {
		h.logger.Error("catalog.export_failed", zap.String("style", style), zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "export failed")
	}
	c.Attachment(style + "_inventory.xlsx")
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

// Product returns the catalog data for a style.
func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	p, err := h.products.Get(c.UserContext(), c.Params("style"))
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(p)
}

// ClearCache flushes every registered cache.
func (h *CatalogHandler) ClearCache(c *fiber.Ctx) error {
	total := 0
	for _, cl := range h.clearers {
		n, err := cl.ClearCache(c.UserContext())
		if err != nil {
			h.logger.Error("catalog.clear_cache_failed", zap.Error(err))
			return fail(c, fiber.StatusInternalServerError, err.Error())
		}
		total += n
	}
	h.logger.Info("catalog.cache_cleared", zap.Int("entries", total))
	return c.JSON(ClearCacheResponse{Success: true, Cleared: total})
}

func (h *CatalogHandler) catalogColors(ctx context.Context, style string) []string {
	if h.products == nil {
		return nil
	}
	p, err := h.products.Get(ctx, style)
	if err != nil || p.Source == model.SourceMock {
		return nil
	}
	return p.Colors
}

func (h *CatalogHandler) render(c *fiber.Ctx, page string, data any) error {
	if h.pages == nil {
		return fail(c, fiber.StatusNotImplemented, "pages disabled")
	}
	var buf bytes.Buffer
	if err := h.pages.Render(&buf, page, data); err != nil {
		h.logger.Error("catalog.render_failed", zap.String("page", page), zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "render failed")
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func normalizeStyle(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
