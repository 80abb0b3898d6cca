package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names accepted by Render.
const (
	PageIndex   = "index.html"
	PageProduct = "product.html"
)

// IndexPage is the data for the landing page.
type IndexPage struct {
	Title  string
	Styles []string
}

// ProductPage is the data for a product page.
type ProductPage struct {
	Product       *model.Product
	SelectedColor string
	Inventory     *model.Inventory
	Pricing       *model.Pricing
	Warehouses    []catalog.Warehouse
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes page name with data to w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

var funcs = template.FuncMap{
	"swatch": catalog.SwatchURL,
	"hex": func(color string) string {
		if h, ok := catalog.ColorHex(color); ok {
			return h
		}
		return "#cccccc"
	},
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"upper": strings.ToUpper,
	"sizes": func(inv *model.Inventory, color string) []string {
		if inv == nil {
			return nil
		}
		out := make([]string, 0, len(inv.Colors[color]))
		for size := range inv.Colors[color] {
			out = append(out, size)
		}
		catalog.SortSizes(out)
		return out
	},
	"stock": func(inv *model.Inventory, color, size, warehouse string) int {
		if inv == nil {
			return 0
		}
		lvl, ok := inv.Colors[color][size]
		if !ok {
			return 0
		}
		return lvl.Warehouses[warehouse]
	},
	"total": func(inv *model.Inventory, color, size string) int {
		if inv == nil {
			return 0
		}
		if lvl, ok := inv.Colors[color][size]; ok {
			return lvl.Total
		}
		return 0
	},
	"price": func(p *model.Pricing, color, size string) float64 {
		if p == nil {
			return 0
		}
		if ps, ok := p.ColorPricing[color]; ok {
			if v, ok := ps.Sale[size]; ok {
				return v
			}
		}
		return p.Sale[size]
	},
}
