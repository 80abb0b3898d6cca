package inventory

import (
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/internal/pricing"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

const exportSheet = "Inventory"

// WriteXLSX renders inventory as a workbook: one row per color/size with a column
// per warehouse, the total, and (when p is non-nil) sale price and case price.
func WriteXLSX(w io.Writer, inv *model.Inventory, p *model.Pricing) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	warehouses := warehouseColumns(inv)
	headers := []string{"Style", "Color", "Size"}
	for _, id := range warehouses {
		headers = append(headers, catalog.WarehouseName(id))
	}
	headers = append(headers, "Total")
	if p != nil {
		headers = append(headers, "Sale Price", "Case Size", "Case Price")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(exportSheet, col, col, 16)
	}

	colors := lo.Keys(inv.Colors)
	sort.Strings(colors)
	row := 2
	for _, color := range colors {
		sizes := lo.Keys(inv.Colors[color])
		catalog.SortSizes(sizes)
		var ps model.PriceSet
		if p != nil {
			ps = p.ForColor(color)
		}
		for _, size := range sizes {
			lvl := inv.Colors[color][size]
			values := []any{inv.Style, color, size}
			for _, id := range warehouses {
				values = append(values, lvl.Warehouses[id])
			}
			values = append(values, lvl.Total)
			if p != nil {
				caseSize := ps.CaseSize[size]
				values = append(values, ps.Sale[size], caseSize,
					pricing.CasePrice(ps.Sale[size], caseSize).InexactFloat64())
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(exportSheet, cell, v)
			}
			row++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func warehouseColumns(inv *model.Inventory) []string {
	seen := make(map[string]bool)
	for _, sizes := range inv.Colors {
		for _, lvl := range sizes {
			for id := range lvl.Warehouses {
				seen[id] = true
			}
		}
	}
	ids := lo.Keys(seen)
	catalog.SortWarehouseIDs(ids)
	return ids
}
