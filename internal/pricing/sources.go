package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/cache"
	"github.com/nwca/sanmar-adapters/internal/metrics"
	"github.com/nwca/sanmar-adapters/internal/sanmar"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// ─── SanMar Pricing Service ──────────────────────────────────────────────────

// ServiceSource asks the SanMar Pricing Service for a color-specific price list.
// Answers are cached per style/color/size.
type ServiceSource struct {
	api   SanMarAPI
	creds sanmar.CredentialSource
	cache cache.Cache
	ttl   time.Duration
}

func NewServiceSource(api SanMarAPI, creds sanmar.CredentialSource, c cache.Cache, ttl time.Duration) *ServiceSource {
	return &ServiceSource{api: api, creds: creds, cache: c, ttl: ttl}
}

func (s *ServiceSource) Name() string { return SourceService }

func (s *ServiceSource) Fetch(ctx context.Context, req Request) (*model.Pricing, error) {
	key := cache.Key("pricing", "service", req.Style, req.Color, req.Size)
	if s.cache != nil {
		var cached model.Pricing
		hit, err := s.cache.Get(ctx, key, &cached)
		metrics.IncCache("pricing", hit)
		if err == nil && hit {
			return &cached, nil
		}
	}

	creds, err := s.creds.SanMarCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("sanmar credentials: %w", err)
	}
	res, err := s.api.GetPricing(ctx, creds, req.Style, req.Color, req.Size)
	if err != nil {
		return nil, err
	}
	p := PricingFromService(req, res)
	if !p.Usable() {
		return nil, ErrNoPricing
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, p, s.ttl)
	}
	return p, nil
}

// PricingFromService converts getPricing rows; when a color was requested its
// tiers become the style-level tiers.
func PricingFromService(req Request, res *sanmar.PricingResult) *model.Pricing {
	p := sanmar.PricingFromService(req.Style, res)
	if req.Color != "" {
		if cp, ok := p.ColorPricing[req.Color]; ok && !cp.Empty() {
			p.PriceSet = cp.Clone()
		}
	}
	return p
}

// ─── PromoStandards Pricing and Configuration ────────────────────────────────

// PromoSource merges the List, Net and Customer price lists: List fills original,
// Net fills sale (and program until Customer overrides it). Missing tiers are estimated.
type PromoSource struct {
	api       SanMarAPI
	creds     sanmar.CredentialSource
	estimator Estimator
	logger    *zap.Logger
}

func NewPromoSource(logger *zap.Logger, api SanMarAPI, creds sanmar.CredentialSource, est Estimator) *PromoSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromoSource{api: api, creds: creds, estimator: est, logger: logger}
}

func (s *PromoSource) Name() string { return SourcePromo }

type tier int

const (
	tierOriginal tier = iota
	tierSale
	tierProgram
)

func (s *PromoSource) Fetch(ctx context.Context, req Request) (*model.Pricing, error) {
	creds, err := s.creds.SanMarCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("sanmar credentials: %w", err)
	}

	out := &model.Pricing{
		Style:        req.Style,
		PriceSet:     model.NewPriceSet(),
		ColorPricing: make(map[string]model.PriceSet),
	}
	plan := []struct {
		priceType sanmar.PriceType
		tiers     []tier
	}{
		{sanmar.PriceList, []tier{tierOriginal}},
		{sanmar.PriceNet, []tier{tierSale, tierProgram}},
		{sanmar.PriceCustomer, []tier{tierProgram}},
	}

	var errs []error
	for _, step := range plan {
		res, err := s.api.GetConfigurationAndPricing(ctx, creds, req.Style, step.priceType)
		if err != nil {
			s.logger.Debug("pricing.promo_price_type_failed",
				zap.String("style", req.Style),
				zap.String("price_type", string(step.priceType)),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.priceType, err))
			continue
		}
		mergeParts(out, req.Style, res.Parts, step.tiers)
	}
	if len(errs) == len(plan) {
		return nil, errors.Join(errs...)
	}

	caseSize := func(size string) int { return CaseSizeFor(req.Style, size) }
	s.estimator.Fill(out.PriceSet, caseSize)
	for _, cp := range out.ColorPricing {
		s.estimator.Fill(cp, caseSize)
	}
	if !out.Usable() {
		return nil, ErrNoPricing
	}
	return out, nil
}

func mergeParts(out *model.Pricing, style string, parts []sanmar.PartPricing, tiers []tier) {
	for _, part := range parts {
		color, size, ok := sanmar.SplitPart(style, part.PartID, part.Description)
		if !ok {
			continue
		}
		unit, ok := part.UnitPrice()
		if !ok || !unit.Positive() {
			continue
		}
		cp, exists := out.ColorPricing[color]
		if !exists {
			cp = model.NewPriceSet()
			out.ColorPricing[color] = cp
		}
		for _, t := range tiers {
			setPrice(cp, t, size, unit.Float())
			setPrice(out.PriceSet, t, size, unit.Float())
		}
	}
}

func setPrice(ps model.PriceSet, t tier, size string, v float64) {
	switch t {
	case tierOriginal:
		ps.Original[size] = v
	case tierSale:
		ps.Sale[size] = v
	case tierProgram:
		ps.Program[size] = v
	}
}

// ─── ProductInfo embedded prices ─────────────────────────────────────────────

// ProductInfoSource reads the prices embedded in the ProductInfo response.
type ProductInfoSource struct {
	api   SanMarAPI
	creds sanmar.CredentialSource
}

func NewProductInfoSource(api SanMarAPI, creds sanmar.CredentialSource) *ProductInfoSource {
	return &ProductInfoSource{api: api, creds: creds}
}

func (s *ProductInfoSource) Name() string { return SourceProductInfo }

func (s *ProductInfoSource) Fetch(ctx context.Context, req Request) (*model.Pricing, error) {
	creds, err := s.creds.SanMarCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("sanmar credentials: %w", err)
	}
	res, err := s.api.GetProductInfo(ctx, creds, req.Style, req.Color, "")
	if err != nil {
		return nil, err
	}
	p := sanmar.PricingFromProductInfo(req.Style, res)
	if !p.Usable() {
		return nil, ErrNoPricing
	}
	return p, nil
}

var (
	_ Source = (*ServiceSource)(nil)
	_ Source = (*PromoSource)(nil)
	_ Source = (*ProductInfoSource)(nil)
	_ Source = (*Defaults)(nil)
)
