package inventory

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/nwca/sanmar-adapters/pkg/model"
)

// mockWarehouses are the distribution centers mock stock is spread across.
var mockWarehouses = []string{"1", "2", "3", "4", "5", "6", "7", "12", "31"}

type mockStyle struct {
	colors []string
	sizes  []string
}

var mockStyles = map[string]mockStyle{
	"PC61": {
		colors: []string{"Black", "White", "Navy", "Red", "Royal", "Athletic Heather"},
		sizes:  []string{"S", "M", "L", "XL", "2XL", "3XL", "4XL"},
	},
	"5000": {
		colors: []string{"Black", "White", "Navy", "Red", "Sport Grey", "Dark Heather"},
		sizes:  []string{"S", "M", "L", "XL", "2XL", "3XL"},
	},
	"K420": {
		colors: []string{"Black", "Navy", "White", "Red", "Royal", "Steel Grey"},
		sizes:  []string{"XS", "S", "M", "L", "XL", "2XL", "3XL", "4XL"},
	},
	"ST850": {
		colors: []string{"Black", "White", "True Navy", "True Red", "True Royal"},
		sizes:  []string{"XS", "S", "M", "L", "XL", "2XL", "3XL", "4XL"},
	},
	"PC90H": {
		colors: []string{"Black", "Navy", "White", "Red", "Royal", "Orange", "Athletic Heather", "Dark Green"},
		sizes:  []string{"S", "M", "L", "XL", "2XL", "3XL", "4XL"},
	},
	"C112": {
		colors: []string{"True Red", "Black/White", "Rich Navy/White", "Maroon/White", "Heather Grey/Rich Navy", "White/Black/Gusty Grey", "Grey Steel/ White"},
		sizes:  []string{"OSFA"},
	},
}

var defaultMockStyle = mockStyle{
	colors: []string{"Black", "Navy", "White", "Red", "Grey"},
	sizes:  []string{"S", "M", "L", "XL", "2XL"},
}

// MockGenerator fabricates plausible stock for demos and outages.
type MockGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockGenerator seeds a generator; equal seeds give equal output.
func NewMockGenerator(seed uint64) *MockGenerator {
	return &MockGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate builds mock inventory for style. Popular sizes (M, L, XL) carry double
// stock, 4XL/5XL a third; each warehouse is out of stock one time in five.
// C112 always has 20-100 per warehouse.
func (g *MockGenerator) Generate(style string) *model.Inventory {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := strings.ToUpper(strings.TrimSpace(style))
	ms, ok := mockStyles[key]
	if !ok {
		ms = defaultMockStyle
	}
	inv := model.NewInventory(style, model.SourceMock)
	for _, color := range ms.colors {
		for _, size := range ms.sizes {
			lvl := inv.Level(color, size)
			for _, wh := range mockWarehouses {
				lvl.Add(wh, g.quantity(key, size))
			}
		}
	}
	return inv
}

func (g *MockGenerator) quantity(style, size string) int {
	if style == "C112" {
		return 20 + g.rng.IntN(81)
	}
	factor := 1.0
	switch size {
	case "M", "L", "XL":
		factor = 2.0
	case "4XL", "5XL":
		factor = 0.3
	}
	qty := int((g.rng.NormFloat64()*15 + 30) * factor)
	if qty < 0 {
		qty = 0
	}
	if g.rng.Float64() < 0.2 {
		qty = 0
	}
	return qty
}
