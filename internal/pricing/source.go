package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/nwca/sanmar-adapters/internal/sanmar"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// ErrNoPricing is returned by a source that answered but had nothing usable.
var ErrNoPricing = errors.New("pricing: no usable pricing")

// Source names reported in Pricing.Source and metrics.
const (
	SourceService     = "sanmar_pricing"
	SourcePromo       = "promostandards"
	SourceProductInfo = "product_info"
	SourceDefault     = "default"
)

// Request identifies what to price. CatalogColors, when known, are the product's
// catalog colors that returned color variants are reconciled against.
type Request struct {
	Style         string
	Color         string
	Size          string
	CatalogColors []string
}

// Source is one stage of the resolution chain.
type Source interface {
	Name() string
	Fetch(ctx context.Context, req Request) (*model.Pricing, error)
}

// SanMarAPI is the subset of the SanMar client the live sources use.
type SanMarAPI interface {
	GetPricing(ctx context.Context, creds sanmar.Credentials, style, color, size string) (*sanmar.PricingResult, error)
	GetConfigurationAndPricing(ctx context.Context, creds sanmar.Credentials, style string, priceType sanmar.PriceType) (*sanmar.ConfigurationResult, error)
	GetProductInfo(ctx context.Context, creds sanmar.Credentials, style, color, size string) (*sanmar.ProductInfoResult, error)
}

// Attempt records the outcome of one stage.
type Attempt struct {
	Source  string         `json:"source"`
	Err     error          `json:"-"`
	Usable  bool           `json:"usable"`
	Elapsed time.Duration  `json:"elapsed"`
	Pricing *model.Pricing `json:"-"`
}

// Resolution is the resolver's answer plus how it got there.
type Resolution struct {
	Pricing  *model.Pricing
	Attempts []Attempt
	// Fallback is set when no live source produced usable pricing.
	Fallback bool
}

// FirstUsable returns the index of the first usable attempt.
func FirstUsable(attempts []Attempt) (int, bool) {
	for i, a := range attempts {
		if a.Err == nil && a.Usable && a.Pricing != nil {
			return i, true
		}
	}
	return -1, false
}
