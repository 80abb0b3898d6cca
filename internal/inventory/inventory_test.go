package inventory

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/cache"
	"github.com/nwca/sanmar-adapters/internal/pricing"
	"github.com/nwca/sanmar-adapters/internal/sanmar"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

type mockAPI struct {
	getInventoryFn func(ctx context.Context, style string) (*sanmar.InventoryResult, error)
	calls          int
}

func (m *mockAPI) GetInventoryLevels(ctx context.Context, _ sanmar.Credentials, style string) (*sanmar.InventoryResult, error) {
	m.calls++
	return m.getInventoryFn(ctx, style)
}

var creds = sanmar.StaticCredentials{Username: "u", Password: "p"}

func qty(n string) sanmar.Amount {
	var a sanmar.Amount
	_ = a.UnmarshalText([]byte(n))
	return a
}

func liveResult() *sanmar.InventoryResult {
	return &sanmar.InventoryResult{Parts: []sanmar.PartInventory{{
		PartColor: "Black",
		LabelSize: "M",
		Locations: []sanmar.InventoryLocation{
			{ID: "1", Quantity: qty("10")},
			{ID: "31", Quantity: qty("5")},
		},
	}}}
}

func assertTotals(t *testing.T, inv *model.Inventory) {
	t.Helper()
	for color, sizes := range inv.Colors {
		for size, lvl := range sizes {
			sum := 0
			for _, q := range lvl.Warehouses {
				sum += q
			}
			assert.Equal(t, sum, lvl.Total, color+"/"+size)
		}
	}
}

// ─── Mock generator ──────────────────────────────────────────────────────────

func TestMockGenerator_KnownStyle(t *testing.T) {
	inv := NewMockGenerator(1).Generate("pc61")
	assert.Equal(t, model.SourceMock, inv.Source)
	assert.Len(t, inv.Colors, 6)
	assert.Len(t, inv.Colors["Black"], 7)
	assert.Len(t, inv.Colors["Black"]["M"].Warehouses, 9)
	assertTotals(t, inv)
}

func TestMockGenerator_C112AlwaysStocked(t *testing.T) {
	inv := NewMockGenerator(7).Generate("C112")
	for _, sizes := range inv.Colors {
		lvl := sizes["OSFA"]
		require.NotNil(t, lvl)
		for _, q := range lvl.Warehouses {
			assert.GreaterOrEqual(t, q, 20)
			assert.LessOrEqual(t, q, 100)
		}
	}
}

func TestMockGenerator_DefaultsAndDeterminism(t *testing.T) {
	a := NewMockGenerator(42).Generate("ZZZ")
	b := NewMockGenerator(42).Generate("ZZZ")
	assert.Len(t, a.Colors, 5)
	assert.Equal(t, a.Colors["Navy"]["L"].Total, b.Colors["Navy"]["L"].Total)
	for _, sizes := range a.Colors {
		for _, lvl := range sizes {
			for _, q := range lvl.Warehouses {
				assert.GreaterOrEqual(t, q, 0)
			}
		}
	}
}

// ─── Service ─────────────────────────────────────────────────────────────────

func TestService_LiveAndCached(t *testing.T) {
	api := &mockAPI{getInventoryFn: func(context.Context, string) (*sanmar.InventoryResult, error) {
		return liveResult(), nil
	}}
	svc := NewService(zap.NewNop(), api, creds, cache.NewMemory(time.Minute, 100), 15*time.Minute, false)

	inv, err := svc.GetByStyle(context.Background(), " pc61 ")
	require.NoError(t, err)
	assert.Equal(t, model.SourceSanMar, inv.Source)
	assert.Equal(t, 15, inv.Colors["Black"]["M"].Total)

	_, err = svc.GetByStyle(context.Background(), "PC61")
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls)

	n, err := svc.ClearCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.GetByStyle(context.Background(), "PC61")
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls)
}

func TestService_FallsBackToMock(t *testing.T) {
	api := &mockAPI{getInventoryFn: func(context.Context, string) (*sanmar.InventoryResult, error) {
		return nil, &sanmar.FaultError{Code: "S:Server", Message: "down"}
	}}
	svc := NewService(zap.NewNop(), api, creds, nil, 0, false).WithMockGenerator(NewMockGenerator(3))

	inv, err := svc.GetByStyle(context.Background(), "PC61")
	require.NoError(t, err)
	assert.Equal(t, model.SourceMock, inv.Source)
	assertTotals(t, inv)
}

func TestService_MockModeSkipsAPI(t *testing.T) {
	api := &mockAPI{getInventoryFn: func(context.Context, string) (*sanmar.InventoryResult, error) {
		return nil, errors.New("should not be called")
	}}
	svc := NewService(zap.NewNop(), api, creds, nil, 0, true)

	inv, err := svc.GetByStyle(context.Background(), "K420")
	require.NoError(t, err)
	assert.Equal(t, model.SourceMock, inv.Source)
	assert.Zero(t, api.calls)
}

func TestService_BlankStyle(t *testing.T) {
	svc := NewService(zap.NewNop(), nil, creds, nil, 0, false)
	_, err := svc.GetByStyle(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrStyleRequired)
}

// ─── Export ──────────────────────────────────────────────────────────────────

func TestWriteXLSX(t *testing.T) {
	inv := model.NewInventory("PC61", model.SourceSanMar)
	inv.Level("Black", "M").Add("1", 10)
	inv.Level("Black", "M").Add("31", 5)
	inv.Level("Black", "S").Add("1", 2)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, inv, pricing.DefaultPricing("PC61")))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Style", "Color", "Size", "Seattle, WA", "Richmond, VA", "Total", "Sale Price", "Case Size", "Case Price"}, rows[0])
	assert.Equal(t, "S", rows[1][2])
	assert.Equal(t, "M", rows[2][2])
	assert.Equal(t, "15", rows[2][5])
	assert.Equal(t, "72", rows[2][7])
}
