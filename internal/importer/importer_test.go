package importer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/internal/publisher"
	"github.com/nwca/sanmar-adapters/internal/sanmar"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

func amt(v float64) sanmar.Amount {
	return sanmar.Amount{Value: decimal.NewFromFloat(v), Valid: true}
}

type mockSanMar struct {
	inventoryFn func(style string) (*sanmar.InventoryResult, error)
	pricingFn   func(style string) (*sanmar.PricingResult, error)
}

func (m *mockSanMar) GetInventoryLevels(_ context.Context, _ sanmar.Credentials, style string) (*sanmar.InventoryResult, error) {
	return m.inventoryFn(style)
}

func (m *mockSanMar) GetPricing(_ context.Context, _ sanmar.Credentials, style, _, _ string) (*sanmar.PricingResult, error) {
	return m.pricingFn(style)
}

type mockCatalog struct {
	styles []string
	colors map[string]string
	err    error
}

func (m *mockCatalog) Styles(context.Context) ([]string, error) { return m.styles, m.err }
func (m *mockCatalog) ColorMappings(context.Context) (map[string]string, error) {
	return m.colors, nil
}

type mockWriter struct {
	mu          sync.Mutex
	deleted     []string
	inserted    map[string][]any
	invalidated []string
	failAfter   int
}

func (m *mockWriter) DeleteAll(_ context.Context, table string) (int, error) {
	m.deleted = append(m.deleted, table)
	return 7, nil
}

func (m *mockWriter) Insert(_ context.Context, table string, record any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inserted == nil {
		m.inserted = map[string][]any{}
	}
	if m.failAfter > 0 && len(m.inserted[table]) >= m.failAfter {
		return errors.New("caspio 500")
	}
	m.inserted[table] = append(m.inserted[table], record)
	return nil
}

func (m *mockWriter) InvalidateCache(_ context.Context, table string) {
	m.invalidated = append(m.invalidated, table)
}

type capturePublisher struct {
	envs []*model.Envelope
}

func (c *capturePublisher) PublishEnvelope(_ context.Context, _ string, env *model.Envelope) error {
	c.envs = append(c.envs, env)
	return nil
}
func (c *capturePublisher) Publish(context.Context, string, any) error { return nil }
func (c *capturePublisher) Close()                                    {}

var testTables = caspio.Tables{Inventory: "Inventory", Pricing: "Pricing"}

func inventoryFor(style string) *sanmar.InventoryResult {
	return &sanmar.InventoryResult{
		ProductID: style,
		Parts: []sanmar.PartInventory{
			{PartColor: "Jet Black", LabelSize: "M", Locations: []sanmar.InventoryLocation{
				{ID: "1", Quantity: amt(10)},
				{ID: "31", Quantity: amt(4)},
				{ID: "", Quantity: amt(99)},
			}},
			{PartID: style + "NV-L", Description: "Tee - Navy - L", Locations: []sanmar.InventoryLocation{{ID: "2", Quantity: amt(3)}}},
			{PartID: "garbage"},
		},
	}
}

func pricingFor(style string) *sanmar.PricingResult {
	return &sanmar.PricingResult{Items: []sanmar.PricingItem{
		{Style: style, Color: "Jet Black", Size: "M", PiecePrice: amt(3.41), CasePrice: amt(2.98), SalePrice: amt(2.50), MyPrice: amt(3.60)},
	}}
}

func newTestImporter(api SanMarAPI, cat Catalog, w TableWriter, pub *capturePublisher) *Importer {
	var ep publisher.EventPublisher
	if pub != nil {
		ep = pub
	}
	im := New(zap.NewNop(), api, sanmar.StaticCredentials{Username: "u", Password: "p"}, cat, w, testTables, nil, ep, "test")
	im.sleep = func(context.Context, time.Duration) error { return nil }
	return im
}

// ─── Row mapping ─────────────────────────────────────────────────────────────

func TestInventoryRows(t *testing.T) {
	rows := InventoryRows("PC61", inventoryFor("PC61"), map[string]string{"Jet Black": "Black"}, "2024-01-01 00:00:00")
	require.Len(t, rows, 3)
	assert.Equal(t, "Black", rows[0].DisplayColor)
	assert.Equal(t, "Jet Black", rows[0].ColorName)
	assert.Equal(t, caspio.FlexString("31"), rows[1].WarehouseID)
	assert.Equal(t, caspio.FlexFloat(4), rows[1].Quantity)
	assert.Equal(t, "Navy", rows[2].ColorName)
	assert.Equal(t, "L", rows[2].Size)
	assert.Nil(t, InventoryRows("X", nil, nil, ""))
}

func TestPricingRows_ProgramPriceAndCaseSize(t *testing.T) {
	rows := PricingRows("PC61", pricingFor("PC61"), nil)
	require.Len(t, rows, 1)
	// myPrice exceeds piece, so the sale price wins.
	assert.Equal(t, caspio.FlexFloat(2.5), rows[0].ProgramPrice)
	assert.Equal(t, caspio.FlexFloat(72), rows[0].CaseSize)
	assert.Equal(t, "Jet Black", rows[0].DisplayColor)
}

// ─── Run ─────────────────────────────────────────────────────────────────────

func TestRun_ReplacesTablesInBatches(t *testing.T) {
	api := &mockSanMar{
		inventoryFn: func(s string) (*sanmar.InventoryResult, error) { return inventoryFor(s), nil },
		pricingFn:   func(s string) (*sanmar.PricingResult, error) { return pricingFor(s), nil },
	}
	w := &mockWriter{}
	pub := &capturePublisher{}
	im := newTestImporter(api, &mockCatalog{styles: []string{"pc61", "K500", "PC61", " "}}, w, pub)

	run, err := im.Run(context.Background(), Options{BatchSize: 2, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, "full", run.Mode)
	assert.Equal(t, 2, run.Styles)
	assert.Equal(t, 6, run.InventoryRows)
	assert.Equal(t, 2, run.PricingRows)
	assert.Equal(t, []string{"Inventory", "Pricing"}, w.deleted)
	assert.Equal(t, []string{"Inventory", "Pricing"}, w.invalidated)

	first := w.inserted["Inventory"][0].(caspio.InventoryRow)
	assert.Equal(t, "PC61", first.Style)

	require.Len(t, pub.envs, 1)
	assert.Equal(t, model.SubjectImportCompleted, pub.envs[0].Topic)
	assert.Equal(t, "catalog.import.completed", pub.envs[0].EventType)
}

func TestRun_TestModeAndFailedStyles(t *testing.T) {
	api := &mockSanMar{
		inventoryFn: func(s string) (*sanmar.InventoryResult, error) {
			if s == "BAD" {
				return nil, sanmar.ErrEmptyResponse
			}
			return inventoryFor(s), nil
		},
		pricingFn: func(s string) (*sanmar.PricingResult, error) {
			if s == "BAD" {
				return nil, &sanmar.ServiceError{Operation: "getPricing", Message: "no style"}
			}
			return pricingFor(s), nil
		},
	}
	w := &mockWriter{}
	im := newTestImporter(api, &mockCatalog{styles: []string{"BAD", "PC61", "K500"}}, w, nil)

	run, err := im.Run(context.Background(), Options{TestMode: true, TestStyles: 2})
	require.NoError(t, err)
	assert.Equal(t, "test", run.Mode)
	assert.Equal(t, 2, run.Styles)
	assert.Equal(t, []string{"BAD"}, run.FailedStyles)
	assert.Equal(t, 3, run.InventoryRows)
}

func TestRun_FailsWithoutRows(t *testing.T) {
	api := &mockSanMar{
		inventoryFn: func(string) (*sanmar.InventoryResult, error) { return nil, errors.New("timeout") },
		pricingFn:   func(string) (*sanmar.PricingResult, error) { return pricingFor("PC61"), nil },
	}
	w := &mockWriter{}
	pub := &capturePublisher{}
	im := newTestImporter(api, &mockCatalog{}, w, pub)

	run, err := im.Run(context.Background(), Options{Styles: []string{"PC61"}})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, "styles", run.Mode)
	assert.Empty(t, w.deleted)
	assert.Equal(t, "catalog.import.failed", pub.envs[0].EventType)
}

func TestRun_NoStyles(t *testing.T) {
	im := newTestImporter(&mockSanMar{}, &mockCatalog{styles: nil}, &mockWriter{}, nil)
	_, err := im.Run(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrNoStyles)
}

func TestRun_InsertFailureReportsProgress(t *testing.T) {
	api := &mockSanMar{
		inventoryFn: func(s string) (*sanmar.InventoryResult, error) { return inventoryFor(s), nil },
		pricingFn:   func(s string) (*sanmar.PricingResult, error) { return pricingFor(s), nil },
	}
	w := &mockWriter{failAfter: 2}
	im := newTestImporter(api, &mockCatalog{styles: []string{"PC61"}}, w, nil)

	run, err := im.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 rows")
	assert.Equal(t, 2, run.InventoryRows)
	assert.Empty(t, w.invalidated)
}

func TestRun_DryRunLeavesTables(t *testing.T) {
	api := &mockSanMar{
		inventoryFn: func(s string) (*sanmar.InventoryResult, error) { return inventoryFor(s), nil },
		pricingFn:   func(s string) (*sanmar.PricingResult, error) { return pricingFor(s), nil },
	}
	w := &mockWriter{}
	im := newTestImporter(api, &mockCatalog{styles: []string{"PC61"}}, w, nil)

	run, err := im.Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, run.InventoryRows)
	assert.Empty(t, w.deleted)
}
