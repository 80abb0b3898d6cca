package pricing

import (
	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// ReconcileColors re-keys ColorPricing onto the product's catalog colors. Variant
// spellings are merged into their catalog color (variant sizes win) and dropped;
// catalog colors left without prices inherit the style-level tiers.
func ReconcileColors(p *model.Pricing, catalogColors []string, m *catalog.ColorMatcher) {
	if p == nil || len(catalogColors) == 0 {
		return
	}
	if p.ColorPricing == nil {
		p.ColorPricing = make(map[string]model.PriceSet)
	}

	isCatalog := make(map[string]bool, len(catalogColors))
	for _, c := range catalogColors {
		isCatalog[c] = true
	}

	for variant, vp := range p.ColorPricing {
		if isCatalog[variant] {
			continue
		}
		target, ok := m.Match(variant, catalogColors)
		if !ok {
			continue
		}
		cp, exists := p.ColorPricing[target]
		if !exists {
			cp = model.NewPriceSet()
			p.ColorPricing[target] = cp
		}
		mergeSet(cp, vp)
		delete(p.ColorPricing, variant)
	}

	for _, c := range catalogColors {
		if cp, ok := p.ColorPricing[c]; !ok || cp.Empty() {
			p.ColorPricing[c] = p.PriceSet.Clone()
		}
	}
}

func mergeSet(dst, src model.PriceSet) {
	for k, v := range src.Original {
		dst.Original[k] = v
	}
	for k, v := range src.Sale {
		dst.Sale[k] = v
	}
	for k, v := range src.Program {
		dst.Program[k] = v
	}
	for k, v := range src.CaseSize {
		dst.CaseSize[k] = v
	}
}
