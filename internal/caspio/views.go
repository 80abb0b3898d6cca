package caspio

import "context"

// InventoryView is the JSON shape of /caspio/api/inventory.
type InventoryView struct {
	Style       string `json:"style"`
	Color       string `json:"color"`
	Size        string `json:"size"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
}

// PricingView is the JSON shape of /caspio/api/pricing.
type PricingView struct {
	Style        string  `json:"style"`
	Color        string  `json:"color"`
	Size         string  `json:"size"`
	PiecePrice   float64 `json:"piece_price"`
	CasePrice    float64 `json:"case_price"`
	ProgramPrice float64 `json:"program_price"`
}

// ProductView joins one inventory row with its price.
type ProductView struct {
	InventoryView
	PiecePrice   float64 `json:"piece_price"`
	CasePrice    float64 `json:"case_price"`
	ProgramPrice float64 `json:"program_price"`
}

func inventoryView(r InventoryRow) InventoryView {
	return InventoryView{
		Style:       r.Style,
		Color:       r.DisplayColor,
		Size:        r.Size,
		WarehouseID: string(r.WarehouseID),
		Quantity:    int(r.Quantity),
	}
}

// InventoryViews returns inventory rows shaped for the API.
func (c *Catalog) InventoryViews(ctx context.Context, style, color, size string) ([]InventoryView, error) {
	rows, err := c.InventoryRows(ctx, style, color, size)
	if err != nil {
		return nil, err
	}
	out := make([]InventoryView, 0, len(rows))
	for _, r := range rows {
		out = append(out, inventoryView(r))
	}
	return out, nil
}

// PricingViews returns pricing rows shaped for the API.
func (c *Catalog) PricingViews(ctx context.Context, style, color, size string) ([]PricingView, error) {
	rows, err := c.PricingRows(ctx, style, color, size)
	if err != nil {
		return nil, err
	}
	out := make([]PricingView, 0, len(rows))
	for _, r := range rows {
		out = append(out, PricingView{
			Style:        r.Style,
			Color:        r.DisplayColor,
			Size:         r.Size,
			PiecePrice:   float64(r.PiecePrice),
			CasePrice:    float64(r.CasePrice),
			ProgramPrice: float64(r.ProgramPrice),
		})
	}
	return out, nil
}

// ProductViews joins inventory and pricing on style, catalog color and size.
// Inventory rows without a price carry zeros.
func (c *Catalog) ProductViews(ctx context.Context, style, color, size string) ([]ProductView, error) {
	inv, err := c.InventoryRows(ctx, style, color, size)
	if err != nil {
		return nil, err
	}
	prices, err := c.PricingRows(ctx, style, color, size)
	if err != nil {
		return nil, err
	}
	type key struct{ style, color, size string }
	byKey := make(map[key]PricingRow, len(prices))
	for _, p := range prices {
		byKey[key{p.Style, p.ColorName, p.Size}] = p
	}

	out := make([]ProductView, 0, len(inv))
	for _, r := range inv {
		v := ProductView{InventoryView: inventoryView(r)}
		if p, ok := byKey[key{r.Style, r.ColorName, r.Size}]; ok {
			v.PiecePrice = float64(p.PiecePrice)
			v.CasePrice = float64(p.CasePrice)
			v.ProgramPrice = float64(p.ProgramPrice)
		}
		out = append(out, v)
	}
	return out, nil
}
