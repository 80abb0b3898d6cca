package model

// Data source tags carried on every result so callers can tell live data from fallbacks.
const (
	SourceSanMar = "sanmar"
	SourceCaspio = "caspio"
	SourceMock   = "mock"
)

// Product is the catalog view of one style.
type Product struct {
	Style       string                       `json:"style"`
	Title       string                       `json:"title"`
	Description string                       `json:"description,omitempty"`
	Brand       string                       `json:"brand,omitempty"`
	Category    string                       `json:"category,omitempty"`
	Colors      []string                     `json:"colors"`
	Sizes       []string                     `json:"sizes"`
	Images      map[string]string            `json:"images,omitempty"`
	Swatches    map[string]string            `json:"swatches,omitempty"`
	PartIDs     map[string]map[string]string `json:"part_ids,omitempty"`
	Source      string                       `json:"source"`
}

// HasColor reports whether color is one of the product's catalog colors.
func (p *Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// PartID returns the SanMar unique key for a color/size pair.
func (p *Product) PartID(color, size string) (string, bool) {
	sizes, ok := p.PartIDs[color]
	if !ok {
		return "", false
	}
	id, ok := sizes[size]
	return id, ok
}
