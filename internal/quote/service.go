package quote

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/internal/pricing"
	"github.com/nwca/sanmar-adapters/internal/publisher"
	"github.com/nwca/sanmar-adapters/internal/store"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

var (
	ErrItemNotFound = errors.New("item not found in quote")
	ErrEmptyCart    = errors.New("quote cart is empty")
)

// ValidationError reports bad customer input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CartStore is the cart persistence the service needs.
type CartStore interface {
	GetCart(ctx context.Context, cartID string) (*model.QuoteCart, error)
	SaveCart(ctx context.Context, cart *model.QuoteCart) error
	DeleteCart(ctx context.Context, cartID string) error
	SaveQuoteRequest(ctx context.Context, q *model.QuoteRequest) error
}

// PriceResolver fills unit prices for items added without one.
type PriceResolver interface {
	Resolve(ctx context.Context, req pricing.Request) *pricing.Resolution
}

// Mirror receives a copy of each submitted quote, e.g. a Caspio table.
type Mirror interface {
	SaveQuoteRequest(ctx context.Context, q *model.QuoteRequest) error
}

// Contact is the customer information attached on submit.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

// Service manages quote carts keyed by an opaque cart id.
type Service struct {
	logger  *zap.Logger
	store   CartStore
	prices  PriceResolver
	mirror  Mirror
	pub     publisher.EventPublisher
	service string
	now     func() time.Time
}

func NewService(logger *zap.Logger, st CartStore, prices PriceResolver, pub publisher.EventPublisher, service string) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Service{logger: logger, store: st, prices: prices, pub: pub, service: service, now: time.Now}
}

// WithMirror copies submitted quotes to m as well as the store.
func (s *Service) WithMirror(m Mirror) *Service {
	s.mirror = m
	return s
}

// NewCartID returns a fresh cart id for a new browser session.
func NewCartID() string { return uuid.NewString() }

// Cart returns the cart, or an empty one when it does not exist yet.
func (s *Service) Cart(ctx context.Context, cartID string) (*model.QuoteCart, error) {
	cart, err := s.store.GetCart(ctx, cartID)
	if errors.Is(err, store.ErrNotFound) {
		return &model.QuoteCart{ID: cartID, Items: []model.QuoteItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []model.QuoteItem{}
	}
	return cart, nil
}

// AddItem appends item, merging quantities with an existing line for the
// same style, color and size.
func (s *Service) AddItem(ctx context.Context, cartID string, item model.QuoteItem) (*model.QuoteCart, error) {
	item.Style = strings.ToUpper(strings.TrimSpace(item.Style))
	item.Color = strings.TrimSpace(item.Color)
	item.Size = catalog.NormalizeSize(item.Size)
	if item.Style == "" {
		return nil, &ValidationError{Field: "style", Message: "required"}
	}
	if item.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "must be positive"}
	}

	cart, err := s.Cart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		it := &cart.Items[i]
		if it.Style == item.Style && it.Color == item.Color && it.Size == item.Size {
			it.Quantity += item.Quantity
			return cart, s.save(ctx, cart)
		}
	}

	if item.UnitPrice <= 0 {
		item.UnitPrice = s.lookupPrice(ctx, item)
	}
	item.ID = uuid.NewString()
	item.AddedAt = s.now().UTC()
	cart.Items = append(cart.Items, item)
	return cart, s.save(ctx, cart)
}

// UpdateItem sets a line's quantity; zero or less removes it.
func (s *Service) UpdateItem(ctx context.Context, cartID, itemID string, quantity int) (*model.QuoteCart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, cartID, itemID)
	}
	cart, err := s.Cart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			return cart, s.save(ctx, cart)
		}
	}
	return nil, ErrItemNotFound
}

func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (*model.QuoteCart, error) {
	cart, err := s.Cart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	kept := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(cart.Items) {
		return nil, ErrItemNotFound
	}
	cart.Items = kept
	return cart, s.save(ctx, cart)
}

func (s *Service) Clear(ctx context.Context, cartID string) error {
	return s.store.DeleteCart(ctx, cartID)
}

// Submit turns the cart into a quote request, persists and publishes it, and
// empties the cart.
func (s *Service) Submit(ctx context.Context, cartID string, contact Contact) (*model.QuoteRequest, error) {
	if err := validateContact(&contact); err != nil {
		return nil, err
	}
	cart, err := s.Cart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	req := &model.QuoteRequest{
		ID:          uuid.NewString(),
		CartID:      cart.ID,
		Name:        contact.Name,
		Email:       contact.Email,
		Company:     contact.Company,
		Phone:       contact.Phone,
		Notes:       contact.Notes,
		Items:       cart.Items,
		Subtotal:    cart.Subtotal(),
		SubmittedAt: s.now().UTC(),
	}
	if err := s.store.SaveQuoteRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("save quote request: %w", err)
	}
	if s.mirror != nil {
		if err := s.mirror.SaveQuoteRequest(ctx, req); err != nil {
			s.logger.Warn("quote.mirror_failed", zap.String("quote_id", req.ID), zap.Error(err))
		}
	}
	if err := publisher.Emit(ctx, s.pub, model.SubjectQuoteSubmitted, "quote.submitted", s.service, req); err != nil {
		s.logger.Warn("quote.publish_failed", zap.String("quote_id", req.ID), zap.Error(err))
	}
	if err := s.store.DeleteCart(ctx, cartID); err != nil {
		s.logger.Warn("quote.clear_cart_failed", zap.String("cart_id", cartID), zap.Error(err))
	}

	s.logger.Info("quote.submitted",
		zap.String("quote_id", req.ID),
		zap.Int("items", len(req.Items)),
		zap.Float64("subtotal", req.Subtotal))
	return req, nil
}

func (s *Service) save(ctx context.Context, cart *model.QuoteCart) error {
	cart.UpdatedAt = s.now().UTC()
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// lookupPrice returns the sale price for the item's size, else the original price.
func (s *Service) lookupPrice(ctx context.Context, item model.QuoteItem) float64 {
	if s.prices == nil {
		return 0
	}
	res := s.prices.Resolve(ctx, pricing.Request{Style: item.Style, Color: item.Color, Size: item.Size})
	if res == nil || res.Pricing == nil {
		return 0
	}
	ps := res.Pricing.ForColor(item.Color)
	if v, ok := ps.Sale[item.Size]; ok && v > 0 {
		return v
	}
	return ps.Original[item.Size]
}

func validateContact(c *Contact) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	if c.Email == "" {
		return &ValidationError{Field: "email", Message: "required"}
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return &ValidationError{Field: "email", Message: "invalid address"}
	}
	return nil
}
