package sanmar

import (
	"strings"

	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// unassignedWarehouse holds stock reported without a location breakdown.
const unassignedWarehouse = "0"

// SplitPart recovers catalog color and size for a PromoStandards part. It reads the
// "... - COLOR - SIZE" suffix of the description first, then a "STYLECOLOR-SIZE" part id.
func SplitPart(style, partID, description string) (color, size string, ok bool) {
	if segs := strings.Split(description, " - "); len(segs) >= 3 {
		s := catalog.NormalizeSize(strings.TrimSpace(segs[len(segs)-1]))
		c := strings.TrimSpace(segs[len(segs)-2])
		if c != "" && s != "" {
			return c, s, true
		}
	}

	idx := strings.LastIndex(partID, "-")
	if idx <= 0 || idx == len(partID)-1 {
		return "", "", false
	}
	styleColor, rawSize := partID[:idx], partID[idx+1:]
	if style == "" || !strings.HasPrefix(strings.ToUpper(styleColor), strings.ToUpper(style)) {
		return "", "", false
	}
	code := styleColor[len(style):]
	if code == "" {
		return "", "", false
	}
	return catalog.MapColor(code), catalog.NormalizeSize(rawSize), true
}

// ProgramPrice picks the customer's program price: myPrice when it does not exceed
// the piece price, else the sale price under the same rule, else the piece price.
func ProgramPrice(piece, sale, my Amount) Amount {
	if my.Positive() && (!piece.Valid || my.Value.LessThanOrEqual(piece.Value)) {
		return my
	}
	if sale.Positive() && (!piece.Valid || sale.Value.LessThanOrEqual(piece.Value)) {
		return sale
	}
	return piece
}

// ProductFromInfo builds the catalog product view from a ProductInfo response.
func ProductFromInfo(style string, res *ProductInfoResult) *model.Product {
	p := &model.Product{
		Style:    style,
		Images:   make(map[string]string),
		Swatches: make(map[string]string),
		PartIDs:  make(map[string]map[string]string),
		Source:   model.SourceSanMar,
	}
	seenColor := make(map[string]bool)
	seenSize := make(map[string]bool)
	addSize := func(s string) {
		s = catalog.NormalizeSize(s)
		if s != "" && !seenSize[s] {
			seenSize[s] = true
			p.Sizes = append(p.Sizes, s)
		}
	}

	for _, item := range res.Items {
		b := item.Basic
		if p.Title == "" {
			p.Title = b.Title
			p.Description = b.Description
			p.Brand = b.Brand
			p.Category = b.Category
		}
		color := b.CatalogColor
		if color == "" {
			color = b.Color
		}
		if color != "" && !seenColor[color] {
			seenColor[color] = true
			p.Colors = append(p.Colors, color)
		}
		for _, s := range catalog.ParseSizeList(b.AvailableSizes) {
			addSize(s)
		}
		addSize(b.Size)

		if color == "" {
			continue
		}
		if img := item.Image.ColorProductImage; img != "" && p.Images[color] == "" {
			p.Images[color] = img
		}
		if sw := item.Image.ColorSwatchImage; sw != "" && p.Swatches[color] == "" {
			p.Swatches[color] = sw
		}
		if b.UniqueKey != "" && b.Size != "" {
			if p.PartIDs[color] == nil {
				p.PartIDs[color] = make(map[string]string)
			}
			p.PartIDs[color][catalog.NormalizeSize(b.Size)] = b.UniqueKey
		}
	}

	for _, c := range p.Colors {
		if p.Swatches[c] == "" {
			p.Swatches[c] = catalog.SwatchURL(style, c)
		}
		if p.Images[c] == "" {
			p.Images[c] = catalog.PlaceholderImageURL(style, c)
		}
	}
	if p.Title == "" {
		p.Title = style
	}
	catalog.SortSizes(p.Sizes)
	return p
}

// PricingFromProductInfo extracts the prices embedded in a ProductInfo response.
func PricingFromProductInfo(style string, res *ProductInfoResult) *model.Pricing {
	out := &model.Pricing{
		Style:        style,
		PriceSet:     model.NewPriceSet(),
		ColorPricing: make(map[string]model.PriceSet),
	}
	for _, item := range res.Items {
		b, pr := item.Basic, item.Price
		if b.Size == "" || !pr.PiecePrice.Positive() {
			continue
		}
		size := catalog.NormalizeSize(b.Size)
		caseSize := b.CaseSize
		if caseSize <= 0 {
			caseSize = catalog.CaseSizeFor(style, size)
		}
		sale := pr.PiecePrice
		if pr.SalePrice.Positive() {
			sale = pr.SalePrice
		}
		program := ProgramPrice(pr.PiecePrice, pr.SalePrice, pr.MyPrice)

		setTier(out.PriceSet, size, pr.PiecePrice, sale, program, caseSize)
		if color := b.CatalogColor; color != "" {
			cp, ok := out.ColorPricing[color]
			if !ok {
				cp = model.NewPriceSet()
				out.ColorPricing[color] = cp
			}
			setTier(cp, size, pr.PiecePrice, sale, program, caseSize)
		}
	}
	return out
}

// PricingFromService converts getPricing rows. Style-level tiers keep the first
// color seen for each size; every color is also kept in ColorPricing.
func PricingFromService(style string, res *PricingResult) *model.Pricing {
	out := &model.Pricing{
		Style:        style,
		PriceSet:     model.NewPriceSet(),
		ColorPricing: make(map[string]model.PriceSet),
	}
	for _, item := range res.Items {
		if item.Size == "" || !item.PiecePrice.Positive() {
			continue
		}
		size := catalog.NormalizeSize(item.Size)
		sale := item.PiecePrice
		if item.SalePrice.Positive() && item.SalePrice.Value.LessThan(item.PiecePrice.Value) {
			sale = item.SalePrice
			if out.Meta == nil {
				out.Meta = &model.SaleMeta{HasSale: true, SaleStart: item.SaleStart, SaleEnd: item.SaleEnd}
			}
		}
		program := ProgramPrice(item.PiecePrice, item.SalePrice, item.MyPrice)
		caseSize := catalog.CaseSizeFor(style, size)

		if _, ok := out.Original[size]; !ok {
			setTier(out.PriceSet, size, item.PiecePrice, sale, program, caseSize)
		}
		if item.Color != "" {
			cp, ok := out.ColorPricing[item.Color]
			if !ok {
				cp = model.NewPriceSet()
				out.ColorPricing[item.Color] = cp
			}
			setTier(cp, size, item.PiecePrice, sale, program, caseSize)
		}
	}
	if out.Meta == nil {
		out.Meta = &model.SaleMeta{}
	}
	return out
}

func setTier(ps model.PriceSet, size string, original, sale, program Amount, caseSize int) {
	ps.Original[size] = original.Float()
	ps.Sale[size] = sale.Float()
	ps.Program[size] = program.Float()
	ps.CaseSize[size] = caseSize
}

// InventoryFromParts sums per-warehouse quantities into color/size totals.
func InventoryFromParts(style string, res *InventoryResult) *model.Inventory {
	inv := model.NewInventory(style, model.SourceSanMar)
	for _, part := range res.Parts {
		color := strings.TrimSpace(part.PartColor)
		size := catalog.NormalizeSize(part.LabelSize)
		if color == "" || size == "" {
			c, s, ok := SplitPart(style, part.PartID, part.Description)
			if !ok {
				continue
			}
			if color == "" {
				color = c
			}
			if size == "" {
				size = s
			}
		}
		lvl := inv.Level(color, size)
		if len(part.Locations) == 0 {
			lvl.Add(unassignedWarehouse, part.Available.Int())
			continue
		}
		for _, loc := range part.Locations {
			lvl.Add(loc.ID, loc.Quantity.Int())
		}
	}
	return inv
}
