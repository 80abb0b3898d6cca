package model

import "time"

// StockLevel is the stock of one color/size. Total is always the sum of Warehouses.
type StockLevel struct {
	Warehouses map[string]int `json:"warehouses"`
	Total      int            `json:"total"`
}

// Add records qty for a warehouse and keeps Total in step.
func (s *StockLevel) Add(warehouseID string, qty int) {
	if s.Warehouses == nil {
		s.Warehouses = make(map[string]int)
	}
	s.Warehouses[warehouseID] += qty
	s.Total += qty
}

// Inventory maps catalog color -> size -> stock.
type Inventory struct {
	Style     string                            `json:"style"`
	Colors    map[string]map[string]*StockLevel `json:"colors"`
	FetchedAt time.Time                         `json:"fetched_at"`
	Source    string                            `json:"source"`
}

// NewInventory returns an empty inventory for style.
func NewInventory(style, source string) *Inventory {
	return &Inventory{
		Style:     style,
		Colors:    make(map[string]map[string]*StockLevel),
		FetchedAt: time.Now().UTC(),
		Source:    source,
	}
}

// Level returns the stock cell for color/size, creating it when missing.
func (inv *Inventory) Level(color, size string) *StockLevel {
	sizes, ok := inv.Colors[color]
	if !ok {
		sizes = make(map[string]*StockLevel)
		inv.Colors[color] = sizes
	}
	lvl, ok := sizes[size]
	if !ok {
		lvl = &StockLevel{Warehouses: make(map[string]int)}
		sizes[size] = lvl
	}
	return lvl
}

// Empty reports whether no stock cells were recorded.
func (inv *Inventory) Empty() bool {
	return inv == nil || len(inv.Colors) == 0
}
