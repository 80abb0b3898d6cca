package pricing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/cache"
	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/internal/sanmar"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// ─── Mocks ───────────────────────────────────────────────────────────────────

type mockSanMar struct {
	getPricingFn     func(ctx context.Context, style, color, size string) (*sanmar.PricingResult, error)
	getConfigFn      func(ctx context.Context, style string, pt sanmar.PriceType) (*sanmar.ConfigurationResult, error)
	getProductInfoFn func(ctx context.Context, style, color, size string) (*sanmar.ProductInfoResult, error)
	pricingCalls     int
}

func (m *mockSanMar) GetPricing(ctx context.Context, _ sanmar.Credentials, style, color, size string) (*sanmar.PricingResult, error) {
	m.pricingCalls++
	if m.getPricingFn != nil {
		return m.getPricingFn(ctx, style, color, size)
	}
	return nil, sanmar.ErrEmptyResponse
}

func (m *mockSanMar) GetConfigurationAndPricing(ctx context.Context, _ sanmar.Credentials, style string, pt sanmar.PriceType) (*sanmar.ConfigurationResult, error) {
	if m.getConfigFn != nil {
		return m.getConfigFn(ctx, style, pt)
	}
	return nil, sanmar.ErrEmptyResponse
}

func (m *mockSanMar) GetProductInfo(ctx context.Context, _ sanmar.Credentials, style, color, size string) (*sanmar.ProductInfoResult, error) {
	if m.getProductInfoFn != nil {
		return m.getProductInfoFn(ctx, style, color, size)
	}
	return nil, sanmar.ErrEmptyResponse
}

var creds = sanmar.StaticCredentials{Username: "u", Password: "p"}

func amount(s string) sanmar.Amount {
	return sanmar.Amount{Value: decimal.RequireFromString(s), Valid: true}
}

func part(id, desc string, prices ...string) sanmar.PartPricing {
	p := sanmar.PartPricing{PartID: id, Description: desc}
	for i, v := range prices {
		p.Prices = append(p.Prices, sanmar.PartPrice{MinQuantity: i*12 + 1, Price: amount(v)})
	}
	return p
}

func mustDefaults(t *testing.T) *Defaults {
	t.Helper()
	d, err := LoadDefaults("")
	require.NoError(t, err)
	return d
}

// ─── Defaults ────────────────────────────────────────────────────────────────

func TestDefaultPricing_PC61CaseSizes(t *testing.T) {
	p := DefaultPricing("PC61")
	for _, s := range []string{"S", "M", "L", "XL"} {
		assert.Equal(t, 72, p.CaseSize[s], s)
	}
	for _, s := range []string{"2XL", "3XL", "4XL"} {
		assert.Equal(t, 36, p.CaseSize[s], s)
	}
	assert.Equal(t, 3.41, p.Original["M"])
	assert.Equal(t, SourceDefault, p.Source)
}

func TestDefaultPricing_GenericAndAliases(t *testing.T) {
	g := DefaultPricing("ZZZ99")
	assert.Equal(t, 15.99, g.Original["M"])
	assert.Equal(t, 24, g.CaseSize["2XL"])

	assert.Equal(t, DefaultPricing("K500").Original, DefaultPricing("l500").Original)
	assert.Equal(t, 144, DefaultPricing("C112").CaseSize["OSFA"])
	assert.Equal(t, 12, DefaultPricing("J790").CaseSize["3XL"])
}

func TestLoadDefaults_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
styles:
  pc61:
    tiers:
      - sizes: [M]
        original: 9.99
        sale: 8.99
        program: 7.99
`), 0o600))

	d, err := LoadDefaults(path)
	require.NoError(t, err)
	p := d.For("PC61")
	assert.Equal(t, 9.99, p.Original["M"])
	assert.Equal(t, 72, p.CaseSize["M"])
	assert.NotContains(t, p.Original, "S")
	assert.Equal(t, 15.99, d.For("other").Original["S"])
}

func TestLoadDefaults_MissingFile(t *testing.T) {
	_, err := LoadDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// ─── Estimator ───────────────────────────────────────────────────────────────

func TestEstimator_Fill(t *testing.T) {
	ps := model.NewPriceSet()
	ps.Original["M"] = 10
	ps.Sale["L"] = 8
	ps.Original["XL"] = 12
	ps.Sale["XL"] = 11
	ps.Program["XL"] = 9

	DefaultEstimator().Fill(ps, func(string) int { return 24 })

	assert.Equal(t, 8.0, ps.Sale["M"])
	assert.Equal(t, 7.2, ps.Program["M"])
	assert.Equal(t, 10.0, ps.Original["L"])
	assert.Equal(t, 7.2, ps.Program["L"])
	assert.Equal(t, 9.0, ps.Program["XL"])
	assert.Equal(t, 24, ps.CaseSize["M"])
}

// ─── Case prices ─────────────────────────────────────────────────────────────

func TestCasePrices(t *testing.T) {
	assert.Equal(t, "245.52", CasePrice(3.41, 72).StringFixed(2))
	out := CasePrices(map[string]float64{"M": 3.41, "2XL": 4.53, "L": 0}, map[string]int{"M": 72, "2XL": 36, "L": 72})
	assert.Equal(t, "163.08", out["2XL"].StringFixed(2))
	assert.NotContains(t, out, "L")
	assert.Equal(t, 72, CaseSizeFor("PC61", "M"))
}

// ─── Color reconciliation ────────────────────────────────────────────────────

func TestReconcileColors(t *testing.T) {
	p := &model.Pricing{PriceSet: model.NewPriceSet(), ColorPricing: map[string]model.PriceSet{}}
	p.Original["M"] = 30.59

	variant := model.NewPriceSet()
	variant.Original["M"] = 29.99
	p.ColorPricing["Smoke Grey/Chrome"] = variant

	ReconcileColors(p, []string{"Smk Gry/Chrome", "Black/Chrome"}, catalog.DefaultColorMatcher())

	assert.NotContains(t, p.ColorPricing, "Smoke Grey/Chrome")
	assert.Equal(t, 29.99, p.ColorPricing["Smk Gry/Chrome"].Original["M"])
	assert.Equal(t, 30.59, p.ColorPricing["Black/Chrome"].Original["M"])
}

// ─── Sources ─────────────────────────────────────────────────────────────────

func TestServiceSource_CachesByKey(t *testing.T) {
	api := &mockSanMar{getPricingFn: func(_ context.Context, style, color, _ string) (*sanmar.PricingResult, error) {
		return &sanmar.PricingResult{Items: []sanmar.PricingItem{
			{Color: "Black", Size: "M", PiecePrice: amount("3.41"), SalePrice: amount("2.72")},
			{Color: "White", Size: "M", PiecePrice: amount("3.10")},
		}}, nil
	}}
	src := NewServiceSource(api, creds, cache.NewMemory(time.Minute, 10), 15*time.Minute)

	p, err := src.Fetch(context.Background(), Request{Style: "PC61", Color: "White"})
	require.NoError(t, err)
	assert.Equal(t, 3.10, p.Original["M"])

	_, err = src.Fetch(context.Background(), Request{Style: "PC61", Color: "White"})
	require.NoError(t, err)
	assert.Equal(t, 1, api.pricingCalls)
}

func TestPromoSource_MergesPriceTypes(t *testing.T) {
	api := &mockSanMar{getConfigFn: func(_ context.Context, style string, pt sanmar.PriceType) (*sanmar.ConfigurationResult, error) {
		switch pt {
		case sanmar.PriceList:
			return &sanmar.ConfigurationResult{Parts: []sanmar.PartPricing{
				part("PC61BK-M", "Tee - Black - M", "3.41"),
				part("PC61BK-XXL", "Tee", "4.53"),
			}}, nil
		case sanmar.PriceNet:
			return &sanmar.ConfigurationResult{Parts: []sanmar.PartPricing{
				part("PC61BK-M", "Tee - Black - M", "2.72", "2.50"),
			}}, nil
		default:
			return nil, sanmar.ErrEmptyResponse
		}
	}}
	src := NewPromoSource(zap.NewNop(), api, creds, DefaultEstimator())

	p, err := src.Fetch(context.Background(), Request{Style: "PC61"})
	require.NoError(t, err)
	assert.Equal(t, 3.41, p.Original["M"])
	assert.Equal(t, 2.72, p.Sale["M"])
	assert.Equal(t, 2.72, p.Program["M"])
	assert.Equal(t, 72, p.CaseSize["M"])

	assert.Equal(t, 4.53, p.Original["2XL"])
	assert.Equal(t, 3.62, p.Sale["2XL"])
	assert.Equal(t, 36, p.CaseSize["2XL"])
	assert.Equal(t, 2.72, p.ColorPricing["Black"].Sale["M"])
}

func TestPromoSource_AllTypesFail(t *testing.T) {
	src := NewPromoSource(zap.NewNop(), &mockSanMar{}, creds, DefaultEstimator())
	_, err := src.Fetch(context.Background(), Request{Style: "PC61"})
	assert.ErrorIs(t, err, sanmar.ErrEmptyResponse)
}

// ─── Resolver ────────────────────────────────────────────────────────────────

type stubSource struct {
	name string
	p    *model.Pricing
	err  error
	hits int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context, Request) (*model.Pricing, error) {
	s.hits++
	return s.p, s.err
}

func usable(v float64) *model.Pricing {
	ps := model.NewPriceSet()
	ps.Original["M"] = v
	ps.Sale["M"] = v
	ps.Original["L"] = v
	ps.Sale["L"] = v
	return &model.Pricing{PriceSet: ps}
}

func TestFirstUsable(t *testing.T) {
	i, ok := FirstUsable([]Attempt{
		{Source: "a", Err: errors.New("boom")},
		{Source: "b", Usable: false, Pricing: &model.Pricing{}},
		{Source: "c", Usable: true, Pricing: usable(1)},
	})
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = FirstUsable(nil)
	assert.False(t, ok)
}

func TestResolver_StopsAtFirstUsable(t *testing.T) {
	a := &stubSource{name: "a", err: errors.New("down")}
	b := &stubSource{name: "b", p: usable(5)}
	c := &stubSource{name: "c", p: usable(9)}

	res := NewResolver(zap.NewNop(), mustDefaults(t), nil, a, b, c).
		Resolve(context.Background(), Request{Style: "PC61"})

	assert.False(t, res.Fallback)
	assert.Equal(t, "b", res.Pricing.Source)
	assert.Equal(t, 5.0, res.Pricing.Original["M"])
	assert.Len(t, res.Attempts, 2)
	assert.Equal(t, 0, c.hits)
}

func TestResolver_AllFailReturnsDefaults(t *testing.T) {
	sources := []Source{
		&stubSource{name: SourceService, err: sanmar.ErrEmptyResponse},
		&stubSource{name: SourcePromo, err: &sanmar.FaultError{Code: "S:Server", Message: "down"}},
		&stubSource{name: SourceProductInfo, p: &model.Pricing{PriceSet: model.NewPriceSet()}},
	}
	res := NewResolver(zap.NewNop(), mustDefaults(t), nil, sources...).
		Resolve(context.Background(), Request{Style: "PC61", CatalogColors: []string{"Black"}})

	require.NotNil(t, res.Pricing)
	assert.True(t, res.Fallback)
	assert.Equal(t, SourceDefault, res.Pricing.Source)
	assert.Equal(t, 72, res.Pricing.CaseSize["M"])
	assert.Equal(t, 3.41, res.Pricing.ColorPricing["Black"].Original["M"])
	assert.Len(t, res.Attempts, 3)
}

func TestResolver_NarrowsToSize(t *testing.T) {
	res := NewResolver(zap.NewNop(), mustDefaults(t), nil).
		Resolve(context.Background(), Request{Style: "PC61", Size: "xxl"})
	assert.Equal(t, map[string]float64{"2XL": 4.53}, res.Pricing.Original)

	res = NewResolver(zap.NewNop(), mustDefaults(t), nil).
		Resolve(context.Background(), Request{Style: "PC61", Size: "9XL"})
	assert.Contains(t, res.Pricing.Original, "M")
}
