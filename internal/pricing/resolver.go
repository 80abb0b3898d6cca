package pricing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/internal/metrics"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// Resolver walks the sources in order and stops at the first usable answer.
// When every source fails it answers from the defaults table.
type Resolver struct {
	logger   *zap.Logger
	sources  []Source
	defaults *Defaults
	matcher  *catalog.ColorMatcher
}

// NewResolver builds a resolver. defaults must not be nil.
func NewResolver(logger *zap.Logger, defaults *Defaults, matcher *catalog.ColorMatcher, sources ...Source) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if matcher == nil {
		matcher = catalog.DefaultColorMatcher()
	}
	return &Resolver{logger: logger, sources: sources, defaults: defaults, matcher: matcher}
}

// Resolve never fails; Resolution.Fallback tells callers the answer came from defaults.
func (r *Resolver) Resolve(ctx context.Context, req Request) *Resolution {
	res := &Resolution{}

	for _, src := range r.sources {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		p, err := src.Fetch(ctx, req)
		a := Attempt{
			Source:  src.Name(),
			Err:     err,
			Usable:  err == nil && p.Usable(),
			Elapsed: time.Since(start),
			Pricing: p,
		}
		res.Attempts = append(res.Attempts, a)
		if a.Usable {
			break
		}
		metrics.IncPricingFailure(src.Name())
		r.logger.Debug("pricing.source_failed",
			zap.String("style", req.Style),
			zap.String("source", src.Name()),
			zap.Error(err))
	}

	if i, ok := FirstUsable(res.Attempts); ok {
		res.Pricing = res.Attempts[i].Pricing
		res.Pricing.Source = res.Attempts[i].Source
	} else {
		res.Fallback = true
		res.Pricing = r.defaults.For(req.Style)
		fields := []zap.Field{zap.String("style", req.Style), zap.String("color", req.Color)}
		for _, a := range res.Attempts {
			if a.Err != nil {
				fields = append(fields, zap.NamedError(a.Source, a.Err))
			}
		}
		r.logger.Warn("pricing.fallback_used", fields...)
	}

	res.Pricing.Style = req.Style
	ReconcileColors(res.Pricing, req.CatalogColors, r.matcher)
	if req.Size != "" {
		narrowToSize(res.Pricing, catalog.NormalizeSize(req.Size))
	}
	metrics.IncPricingResolved(res.Pricing.Source)
	return res
}

// narrowToSize keeps only size when it is priced; unknown sizes leave p untouched.
func narrowToSize(p *model.Pricing, size string) {
	if _, ok := p.Original[size]; !ok {
		return
	}
	p.PriceSet = onlySize(p.PriceSet, size)
	for c, cp := range p.ColorPricing {
		p.ColorPricing[c] = onlySize(cp, size)
	}
}

func onlySize(ps model.PriceSet, size string) model.PriceSet {
	out := model.NewPriceSet()
	if v, ok := ps.Original[size]; ok {
		out.Original[size] = v
	}
	if v, ok := ps.Sale[size]; ok {
		out.Sale[size] = v
	}
	if v, ok := ps.Program[size]; ok {
		out.Program[size] = v
	}
	if v, ok := ps.CaseSize[size]; ok {
		out.CaseSize[size] = v
	}
	return out
}
