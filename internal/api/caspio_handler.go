package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/internal/catalog"
)

// CaspioHandler serves inventory and pricing already imported into Caspio.
type CaspioHandler struct {
	logger *zap.Logger
	views  CaspioViews
}

// NewCaspioHandler creates a CaspioHandler. A nil views answers 503.
func NewCaspioHandler(logger *zap.Logger, views CaspioViews) *CaspioHandler {
	return &CaspioHandler{logger: logger, views: views}
}

type viewFilter struct {
	style, color, size string
}

func parseFilter(c *fiber.Ctx) viewFilter {
	return viewFilter{
		style: normalizeStyle(c.Params("style")),
		color: strings.TrimSpace(c.Query("color")),
		size:  catalog.NormalizeSize(strings.TrimSpace(c.Query("size"))),
	}
}

// Inventory lists Caspio inventory rows for a style.
func (h *CaspioHandler) Inventory(c *fiber.Ctx) error {
	if h.views == nil {
		return failErr(c, caspio.ErrNotConfigured)
	}
	f := parseFilter(c)
	rows, err := h.views.InventoryViews(c.UserContext(), f.style, f.color, f.size)
	if err != nil {
		h.logger.Error("caspio.inventory_query_failed", zap.String("style", f.style), zap.Error(err))
		return failErr(c, err)
	}
	return c.JSON(newList(rows))
}

// Pricing lists Caspio pricing rows for a style.
func (h *CaspioHandler) Pricing(c *fiber.Ctx) error {
	if h.views == nil {
		return failErr(c, caspio.ErrNotConfigured)
	}
	f := parseFilter(c)
	rows, err := h.views.PricingViews(c.UserContext(), f.style, f.color, f.size)
	if err != nil {
		h.logger.Error("caspio.pricing_query_failed", zap.String("style", f.style), zap.Error(err))
		return failErr(c, err)
	}
	return c.JSON(newList(rows))
}

// Product joins inventory and pricing rows for a style.
func (h *CaspioHandler) Product(c *fiber.Ctx) error {
	if h.views == nil {
		return failErr(c, caspio.ErrNotConfigured)
	}
	f := parseFilter(c)
	rows, err := h.views.ProductViews(c.UserContext(), f.style, f.color, f.size)
	if err != nil {
		h.logger.Error("caspio.product_query_failed", zap.String("style", f.style), zap.Error(err))
		return failErr(c, err)
	}
	return c.JSON(newList(rows))
}
