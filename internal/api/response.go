package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/internal/inventory"
	"github.com/nwca/sanmar-adapters/internal/product"
	"github.com/nwca/sanmar-adapters/internal/quote"
	"github.com/nwca/sanmar-adapters/internal/store"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// PricingResponse is the pricing payload plus whether it came from defaults.
type PricingResponse struct {
	*model.Pricing
	Fallback bool `json:"fallback"`
}

// ClearCacheResponse reports how many entries /clear-cache removed.
type ClearCacheResponse struct {
	Success bool `json:"success"`
	Cleared int  `json:"cleared"`
}

// ListResponse wraps Caspio-backed lists.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// SearchResponse is a page of product search results.
type SearchResponse struct {
	Query    string              `json:"query"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Items    []caspio.ProductRow `json:"items"`
}

// CartResponse is the quote cart with its running subtotal.
type CartResponse struct {
	*model.QuoteCart
	ItemCount int     `json:"item_count"`
	Subtotal  float64 `json:"subtotal"`
}

func newList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

func newCart(cart *model.QuoteCart) CartResponse {
	if cart.Items == nil {
		cart.Items = []model.QuoteItem{}
	}
	return CartResponse{QuoteCart: cart, ItemCount: len(cart.Items), Subtotal: cart.Subtotal()}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: true, Message: msg})
}

func failErr(c *fiber.Ctx, err error) error {
	return fail(c, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var verr *quote.ValidationError
	var apiErr *caspio.APIError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, quote.ErrEmptyCart),
		errors.Is(err, inventory.ErrStyleRequired),
		errors.Is(err, product.ErrStyleRequired):
		return fiber.StatusBadRequest
	case errors.Is(err, quote.ErrItemNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, caspio.ErrNotConfigured):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, caspio.ErrUnauthorized), errors.As(err, &apiErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
