package model

// PriceSet holds the three price tiers keyed by size.
type PriceSet struct {
	Original map[string]float64 `json:"original_price"`
	Sale     map[string]float64 `json:"sale_price"`
	Program  map[string]float64 `json:"program_price"`
	CaseSize map[string]int     `json:"case_size"`
}

// NewPriceSet returns a PriceSet with allocated maps.
func NewPriceSet() PriceSet {
	return PriceSet{
		Original: make(map[string]float64),
		Sale:     make(map[string]float64),
		Program:  make(map[string]float64),
		CaseSize: make(map[string]int),
	}
}

// Empty reports whether no original or sale prices exist.
func (p PriceSet) Empty() bool {
	return len(p.Original) == 0 && len(p.Sale) == 0
}

// Clone returns a deep copy.
func (p PriceSet) Clone() PriceSet {
	out := NewPriceSet()
	for k, v := range p.Original {
		out.Original[k] = v
	}
	for k, v := range p.Sale {
		out.Sale[k] = v
	}
	for k, v := range p.Program {
		out.Program[k] = v
	}
	for k, v := range p.CaseSize {
		out.CaseSize[k] = v
	}
	return out
}

// SaleMeta describes an active SanMar sale window.
type SaleMeta struct {
	HasSale   bool   `json:"has_sale"`
	SaleStart string `json:"sale_start_date,omitempty"`
	SaleEnd   string `json:"sale_end_date,omitempty"`
}

// Pricing is the resolved pricing for a style, optionally broken down by color.
type Pricing struct {
	Style string `json:"style"`
	PriceSet
	ColorPricing map[string]PriceSet `json:"color_pricing,omitempty"`
	Meta         *SaleMeta           `json:"meta,omitempty"`
	// Source names the resolution stage that produced this value.
	Source string `json:"source"`
}

// Usable reports whether the pricing carries at least one price.
func (p *Pricing) Usable() bool {
	if p == nil {
		return false
	}
	if !p.PriceSet.Empty() {
		return true
	}
	for _, cp := range p.ColorPricing {
		if !cp.Empty() {
			return true
		}
	}
	return false
}

// ForColor returns the color-specific tiers, or the style-level tiers when none exist.
func (p *Pricing) ForColor(color string) PriceSet {
	if cp, ok := p.ColorPricing[color]; ok && !cp.Empty() {
		return cp
	}
	return p.PriceSet
}
