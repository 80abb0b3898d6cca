package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/nwca/sanmar-adapters/internal/catalog"
)

// CaseSizeFor returns units per case for a style/size when the source reports none.
func CaseSizeFor(style, size string) int {
	return catalog.CaseSizeFor(style, size)
}

// CasePrice is unit × caseSize rounded to cents.
func CasePrice(unit float64, caseSize int) decimal.Decimal {
	return decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(caseSize))).Round(2)
}

// CasePrices computes per-case totals for every size with a positive unit price.
func CasePrices(unit map[string]float64, caseSizes map[string]int) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(unit))
	for size, price := range unit {
		n := caseSizes[size]
		if price <= 0 || n <= 0 {
			continue
		}
		out[size] = CasePrice(price, n)
	}
	return out
}
