package product

import (
	"strings"

	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

var standardSizes = []string{"XS", "S", "M", "L", "XL", "2XL", "3XL", "4XL"}

type mockProduct struct {
	title       string
	description string
	brand       string
	colors      []string
	sizes       []string
}

var mockProducts = map[string]mockProduct{
	"PC61": {
		title:       "Port & Company Essential Tee",
		description: "An enduring favorite, our comfortable classic tee is an everyday essential.",
		brand:       "Port & Company",
		colors:      []string{"Black", "White", "Navy", "Athletic Heather", "Red", "Royal"},
		sizes:       standardSizes,
	},
	"J790": {
		title:       "Port Authority Glacier Soft Shell Jacket",
		description: "Windproof and water-resistant soft shell with gentle stretch, ideal for layering.",
		brand:       "Port Authority",
		colors:      []string{"Black/Chrome", "AtlBlue/Chrome", "Smk Gry/Chrome", "Olive/Chrome"},
		sizes:       standardSizes,
	},
	"K500": {
		title:       "Port Authority Silk Touch Polo",
		description: "A silky smooth piqué knit polo that resists wrinkles and shrinking.",
		brand:       "Port Authority",
		colors:      []string{"Black", "White", "Navy", "Royal", "Red"},
		sizes:       standardSizes,
	},
	"L500": {
		title:       "Port Authority Ladies Silk Touch Polo",
		description: "Flat knit collar and cuffs, metal buttons and side vents in an easy care blend.",
		brand:       "Port Authority",
		colors:      []string{"Black", "White", "Navy", "Royal", "Red", "Pink"},
		sizes:       standardSizes,
	},
	"DT292": {
		title:       "District Very Important Tee",
		description: "Super soft 100% ring spun cotton tee.",
		brand:       "District",
		colors:      []string{"Black", "White", "Navy", "Athletic Heather", "Red"},
		sizes:       standardSizes,
	},
	"LK5602": {
		title:       "Sport-Tek Ladies PosiCharge Electric Heather Colorblock 1/4-Zip Pullover",
		description: "Moisture wicking, odor and static resistant colorblock pullover.",
		brand:       "Sport-Tek",
		colors:      []string{"Black Electric/Black", "True Navy Electric/True Navy", "True Red Electric/True Red"},
		sizes:       standardSizes,
	},
}

// MockProduct returns the canned product for style, or a generic product.
func MockProduct(style string) *model.Product {
	style = strings.ToUpper(strings.TrimSpace(style))
	mp, ok := mockProducts[style]
	if !ok {
		mp = mockProduct{
			title:  "Product " + style,
			colors: []string{"Black", "Navy", "White"},
			sizes:  []string{"S", "M", "L", "XL", "2XL"},
		}
	}
	p := &model.Product{
		Style:       style,
		Title:       mp.title,
		Description: mp.description,
		Brand:       mp.brand,
		Colors:      append([]string(nil), mp.colors...),
		Sizes:       append([]string(nil), mp.sizes...),
		Images:      make(map[string]string, len(mp.colors)),
		Swatches:    make(map[string]string, len(mp.colors)),
		Source:      model.SourceMock,
	}
	for _, c := range mp.colors {
		p.Images[c] = catalog.PlaceholderImageURL(style, c)
		p.Swatches[c] = catalog.SwatchURL(style, c)
	}
	return p
}
