package caspio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/nwca/sanmar-adapters/pkg/model"
)

// Tables names the Caspio tables this system reads and writes.
type Tables struct {
	Products  string
	Inventory string
	Pricing   string
	Colors    string
	Quotes    string
}

// FlexString decodes either a JSON string or number; Caspio returns ids as both.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(b))
	return nil
}

// FlexFloat decodes either a JSON number or a numeric string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("caspio number %q: %w", s, err)
	}
	*f = FlexFloat(v)
	return nil
}

// InventoryRow is one record of the inventory table.
type InventoryRow struct {
	Style        string     `json:"STYLE"`
	ColorName    string     `json:"COLOR_NAME"`
	DisplayColor string     `json:"DISPLAY_COLOR"`
	Size         string     `json:"SIZE"`
	WarehouseID  FlexString `json:"WAREHOUSE_ID"`
	Quantity     FlexFloat  `json:"QUANTITY"`
	LastUpdated  string     `json:"LAST_UPDATED,omitempty"`
}

// PricingRow is one record of the pricing table.
type PricingRow struct {
	Style        string    `json:"STYLE"`
	ColorName    string    `json:"COLOR_NAME"`
	DisplayColor string    `json:"DISPLAY_COLOR"`
	Size         string    `json:"SIZE"`
	PiecePrice   FlexFloat `json:"PIECE_PRICE"`
	CasePrice    FlexFloat `json:"CASE_PRICE"`
	ProgramPrice FlexFloat `json:"PROGRAM_PRICE"`
	CaseSize     FlexFloat `json:"CASE_SIZE"`
}

// ProductRow is one record of the SanMar bulk product table.
type ProductRow struct {
	Style       string    `json:"style"`
	Title       string    `json:"productTitle"`
	Description string    `json:"productDescription,omitempty"`
	Brand       string    `json:"brandName"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
	Color       string    `json:"color"`
	Size        string    `json:"size"`
	PiecePrice  FlexFloat `json:"piecePrice"`
	Image       string    `json:"productImage,omitempty"`
}

// ColorMappingRow maps a SanMar catalog color to the name shown to customers.
type ColorMappingRow struct {
	CatalogColor string `json:"CATALOG_COLOR"`
	DisplayColor string `json:"DISPLAY_COLOR"`
}

// quoteRequestRow is how a submitted quote is mirrored into Caspio.
type quoteRequestRow struct {
	QuoteID     string  `json:"QUOTE_ID"`
	Name        string  `json:"CUSTOMER_NAME"`
	Email       string  `json:"EMAIL"`
	Company     string  `json:"COMPANY"`
	Phone       string  `json:"PHONE"`
	Notes       string  `json:"NOTES"`
	Items       string  `json:"ITEMS_JSON"`
	Subtotal    float64 `json:"SUBTOTAL"`
	SubmittedAt string  `json:"SUBMITTED_AT"`
}

// Catalog runs the domain queries over a Client.
type Catalog struct {
	client *Client
	tables Tables
}

func NewCatalog(client *Client, tables Tables) *Catalog {
	return &Catalog{client: client, tables: tables}
}

// Client exposes the underlying table client.
func (c *Catalog) Client() *Client { return c.client }

// Tables returns the configured table names.
func (c *Catalog) Tables() Tables { return c.tables }

// Categories lists distinct product categories.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	rows, err := QueryAll[ProductRow](ctx, c.client, c.tables.Products, Query{
		Select:   "category",
		Where:    "category IS NOT NULL",
		OrderBy:  "category ASC",
		Distinct: true,
	})
	if err != nil {
		return nil, err
	}
	return distinct(rows, func(r ProductRow) string { return r.Category }), nil
}

// Subcategories lists distinct subcategories of category.
func (c *Catalog) Subcategories(ctx context.Context, category string) ([]string, error) {
	rows, err := QueryAll[ProductRow](ctx, c.client, c.tables.Products, Query{
		Select:   "subcategory",
		Where:    Where(Eq("category", category), "subcategory IS NOT NULL"),
		OrderBy:  "subcategory ASC",
		Distinct: true,
	})
	if err != nil {
		return nil, err
	}
	return distinct(rows, func(r ProductRow) string { return r.Subcategory }), nil
}

// SearchProducts returns one page of products whose style starts with term or
// whose title contains it.
func (c *Catalog) SearchProducts(ctx context.Context, term string, page, pageSize int) ([]ProductRow, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []ProductRow{}, nil
	}
	if page < 1 {
		page = 1
	}
	esc := strings.ReplaceAll(term, "'", "''")
	return QueryAs[ProductRow](ctx, c.client, c.tables.Products, Query{
		Where:      fmt.Sprintf("style LIKE '%s%%' OR productTitle LIKE '%%%s%%'", esc, esc),
		OrderBy:    "style ASC",
		PageSize:   pageSize,
		PageNumber: page,
	})
}

// SearchStyles returns up to limit distinct styles starting with prefix.
func (c *Catalog) SearchStyles(ctx context.Context, prefix string, limit int) ([]string, error) {
	esc := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(prefix)), "'", "''")
	rows, err := QueryAs[ProductRow](ctx, c.client, c.tables.Products, Query{
		Select:   "style",
		Where:    fmt.Sprintf("style LIKE '%s%%'", esc),
		OrderBy:  "style ASC",
		Distinct: true,
		PageSize: limit,
	})
	if err != nil {
		return nil, err
	}
	return distinct(rows, func(r ProductRow) string { return r.Style }), nil
}

// Styles lists every distinct style in the product table.
func (c *Catalog) Styles(ctx context.Context) ([]string, error) {
	rows, err := QueryAll[ProductRow](ctx, c.client, c.tables.Products, Query{
		Select:   "STYLE",
		OrderBy:  "STYLE ASC",
		Distinct: true,
	})
	if err != nil {
		return nil, err
	}
	return distinct(rows, func(r ProductRow) string { return r.Style }), nil
}

// ProductRows returns the bulk rows for one style ordered by color and size.
func (c *Catalog) ProductRows(ctx context.Context, style string) ([]ProductRow, error) {
	return QueryAll[ProductRow](ctx, c.client, c.tables.Products, Query{
		Where:   Eq("style", style),
		OrderBy: "color ASC, size ASC",
	})
}

// ColorMappings returns catalog color → display color.
func (c *Catalog) ColorMappings(ctx context.Context) (map[string]string, error) {
	rows, err := QueryAll[ColorMappingRow](ctx, c.client, c.tables.Colors, Query{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.CatalogColor != "" && r.DisplayColor != "" {
			out[r.CatalogColor] = r.DisplayColor
		}
	}
	return out, nil
}

func rowFilter(style, color, size string) string {
	return Where(Eq("STYLE", style), Eq("COLOR_NAME", color), Eq("SIZE", size))
}

// InventoryRows returns inventory records, optionally narrowed by color and size.
func (c *Catalog) InventoryRows(ctx context.Context, style, color, size string) ([]InventoryRow, error) {
	return QueryAll[InventoryRow](ctx, c.client, c.tables.Inventory, Query{Where: rowFilter(style, color, size)})
}

// PricingRows returns pricing records, optionally narrowed by color and size.
func (c *Catalog) PricingRows(ctx context.Context, style, color, size string) ([]PricingRow, error) {
	return QueryAll[PricingRow](ctx, c.client, c.tables.Pricing, Query{Where: rowFilter(style, color, size)})
}

// SaveQuoteRequest mirrors a submitted quote into the quotes table.
func (c *Catalog) SaveQuoteRequest(ctx context.Context, q *model.QuoteRequest) error {
	items, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("encode quote items: %w", err)
	}
	return c.client.Insert(ctx, c.tables.Quotes, quoteRequestRow{
		QuoteID:     q.ID,
		Name:        q.Name,
		Email:       q.Email,
		Company:     q.Company,
		Phone:       q.Phone,
		Notes:       q.Notes,
		Items:       string(items),
		Subtotal:    q.Subtotal,
		SubmittedAt: q.SubmittedAt.UTC().Format("2006-01-02T15:04:05"),
	})
}

func distinct[T any](rows []T, field func(T) string) []string {
	vals := lo.FilterMap(rows, func(r T, _ int) (string, bool) {
		v := strings.TrimSpace(field(r))
		return v, v != ""
	})
	return lo.Uniq(vals)
}
