package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/nwca/sanmar-adapters/pkg/model"
)

// Estimator fills missing tiers from the ones that exist. The multipliers are
// placeholders until real contract ratios are known.
type Estimator struct {
	Sale     decimal.Decimal // sale = original × Sale
	Program  decimal.Decimal // program = sale × Program
	Original decimal.Decimal // original = sale × Original
}

// NewEstimator builds an estimator from float multipliers.
func NewEstimator(sale, program, original float64) Estimator {
	return Estimator{
		Sale:     decimal.NewFromFloat(sale),
		Program:  decimal.NewFromFloat(program),
		Original: decimal.NewFromFloat(original),
	}
}

// DefaultEstimator uses 0.8 / 0.9 / 1.25.
func DefaultEstimator() Estimator {
	return NewEstimator(0.8, 0.9, 1.25)
}

// Fill completes ps in place. caseSize supplies case sizes for sizes without one.
func (e Estimator) Fill(ps model.PriceSet, caseSize func(size string) int) {
	for _, size := range priceSizes(ps) {
		orig, hasOrig := ps.Original[size]
		sale, hasSale := ps.Sale[size]
		hasOrig = hasOrig && orig > 0
		hasSale = hasSale && sale > 0

		switch {
		case hasOrig && !hasSale:
			sale = e.scale(orig, e.Sale)
			ps.Sale[size] = sale
		case hasSale && !hasOrig:
			ps.Original[size] = e.scale(sale, e.Original)
		case !hasOrig && !hasSale:
			continue
		}
		if p, ok := ps.Program[size]; !ok || p <= 0 {
			ps.Program[size] = e.scale(sale, e.Program)
		}
		if _, ok := ps.CaseSize[size]; !ok && caseSize != nil {
			ps.CaseSize[size] = caseSize(size)
		}
	}
}

func (e Estimator) scale(v float64, m decimal.Decimal) float64 {
	f, _ := decimal.NewFromFloat(v).Mul(m).Round(2).Float64()
	return f
}

func priceSizes(ps model.PriceSet) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range []map[string]float64{ps.Original, ps.Sale, ps.Program} {
		for s := range m {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
