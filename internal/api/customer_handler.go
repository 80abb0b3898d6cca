package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/internal/quote"
	"github.com/nwca/sanmar-adapters/internal/store"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// CartCookie holds the quote cart id in the browser.
const CartCookie = "quote_cart"

const (
	defaultPageSize = 24
	maxPageSize     = 100
)

// CustomerHandler serves browsing, search and the quote cart.
type CustomerHandler struct {
	logger  *zap.Logger
	catalog CustomerCatalog
	quotes  QuoteService
	newID   func() string
}

// NewCustomerHandler creates a CustomerHandler. A nil catalog answers 503 on
// the browse routes.
func NewCustomerHandler(logger *zap.Logger, cat CustomerCatalog, quotes QuoteService) *CustomerHandler {
	return &CustomerHandler{logger: logger, catalog: cat, quotes: quotes, newID: quote.NewCartID}
}

// AddItemRequest is the body of POST /customer/api/quote/items.
type AddItemRequest struct {
	Style     string  `json:"style"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Validate checks the request fields.
func (r AddItemRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Style) == "":
		return &quote.ValidationError{Field: "style", Message: "is required"}
	case strings.TrimSpace(r.Size) == "":
		return &quote.ValidationError{Field: "size", Message: "is required"}
	case r.Quantity <= 0:
		return &quote.ValidationError{Field: "quantity", Message: "must be positive"}
	case r.UnitPrice < 0:
		return &quote.ValidationError{Field: "unit_price", Message: "must not be negative"}
	}
	return nil
}

// UpdateItemRequest is the body of PUT /customer/api/quote/items/:id.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// Categories lists product categories.
func (h *CustomerHandler) Categories(c *fiber.Ctx) error {
	if h.catalog == nil {
		return failErr(c, caspio.ErrNotConfigured)
	}
	cats, err := h.catalog.Categories(c.UserContext())
	if err != nil {
		h.logger.Error("customer.categories_failed", zap.Error(err))
		return failErr(c, err)
	}
	return c.JSON(newList(cats))
}

// Subcategories lists subcategories of :category.
func (h *CustomerHandler) Subcategories(c *fiber.Ctx) error {
	if h.catalog == nil {
		return failErr(c, caspio.ErrNotConfigured)
	}
	category := strings.TrimSpace(c.Params("category"))
	if category == "" {
		return fail(c, fiber.StatusBadRequest, "category is required")
	}
	subs, err := h.catalog.Subcategories(c.UserContext(), category)
	if err != nil {
		h.logger.Error("customer.subcategories_failed", zap.String("category", category), zap.Error(err))
		return failErr(c, err)
	}
	return c.JSON(newList(subs))
}

// Search pages through products matching ?q=.
func (h *CustomerHandler) Search(c *fiber.Ctx) error {
	if h.catalog == nil {
		return failErr(c, caspio.ErrNotConfigured)
	}
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return fail(c, fiber.StatusBadRequest, "q is required")
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	size := c.QueryInt("page_size", defaultPageSize)
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}
	rows, err := h.catalog.SearchProducts(c.UserContext(), q, page, size)
	if err != nil {
		h.logger.Error("customer.search_failed", zap.String("q", q), zap.Error(err))
		return failErr(c, err)
	}
	if rows == nil {
		rows = []caspio.ProductRow{}
	}
	return c.JSON(SearchResponse{Query: q, Page: page, PageSize: size, Items: rows})
}

// GetQuote returns the caller's cart.
func (h *CustomerHandler) GetQuote(c *fiber.Ctx) error {
	cart, err := h.quotes.Cart(c.UserContext(), h.cartID(c))
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(newCart(cart))
}

// AddItem adds a line to the caller's cart.
func (h *CustomerHandler) AddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return failErr(c, err)
	}
	cart, err := h.quotes.AddItem(c.UserContext(), h.cartID(c), model.QuoteItem{
		Style:     req.Style,
		Color:     req.Color,
		Size:      req.Size,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		h.logger.Error("customer.quote_add_failed", zap.String("style", req.Style), zap.Error(err))
		return failErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newCart(cart))
}

// UpdateItem sets the quantity of one line; zero removes it.
func (h *CustomerHandler) UpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	cart, err := h.quotes.UpdateItem(c.UserContext(), h.cartID(c), c.Params("id"), req.Quantity)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(newCart(cart))
}

// RemoveItem deletes one line.
func (h *CustomerHandler) RemoveItem(c *fiber.Ctx) error {
	cart, err := h.quotes.RemoveItem(c.UserContext(), h.cartID(c), c.Params("id"))
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(newCart(cart))
}

// ClearQuote empties the cart.
func (h *CustomerHandler) ClearQuote(c *fiber.Ctx) error {
	if err := h.quotes.Clear(c.UserContext(), h.cartID(c)); err != nil {
		return failErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// SubmitQuote turns the cart into a quote request.
func (h *CustomerHandler) SubmitQuote(c *fiber.Ctx) error {
	var contact quote.Contact
	if err := c.BodyParser(&contact); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	cartID := h.cartID(c)
	req, err := h.quotes.Submit(c.UserContext(), cartID, contact)
	if err != nil {
		if statusFor(err) >= fiber.StatusInternalServerError {
			h.logger.Error("customer.quote_submit_failed", zap.String("cart", cartID), zap.Error(err))
		}
		return failErr(c, err)
	}
	c.ClearCookie(CartCookie)
	return c.Status(fiber.StatusCreated).JSON(req)
}

// cartID returns the cookie-held cart id, issuing a new one when absent.
func (h *CustomerHandler) cartID(c *fiber.Ctx) string {
	if id := c.Cookies(CartCookie); id != "" {
		return id
	}
	id := h.newID()
	c.Cookie(&fiber.Cookie{
		Name:     CartCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(store.CartTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}
