package pricing

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/nwca/sanmar-adapters/pkg/model"
)

//go:embed defaults.yaml
var embeddedDefaults []byte

// Tier prices a group of sizes identically.
type Tier struct {
	Sizes    []string `yaml:"sizes"`
	Original float64  `yaml:"original"`
	Sale     float64  `yaml:"sale"`
	Program  float64  `yaml:"program"`
	CaseSize int      `yaml:"case_size"`
}

type StyleDefaults struct {
	Tiers []Tier `yaml:"tiers"`
}

// Defaults is the last-resort pricing table.
type Defaults struct {
	Generic StyleDefaults            `yaml:"generic"`
	Styles  map[string]StyleDefaults `yaml:"styles"`
}

// ParseDefaults decodes a YAML defaults table. Style keys are upper-cased.
func ParseDefaults(raw []byte) (*Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse pricing defaults: %w", err)
	}
	if len(d.Generic.Tiers) == 0 {
		return nil, fmt.Errorf("parse pricing defaults: generic tiers missing")
	}
	d.Styles = lo.MapKeys(d.Styles, func(_ StyleDefaults, k string) string {
		return strings.ToUpper(strings.TrimSpace(k))
	})
	return &d, nil
}

// LoadDefaults returns the embedded table, overlaid with path when set.
// Styles in the file replace embedded styles; a file generic section replaces the generic tiers.
func LoadDefaults(path string) (*Defaults, error) {
	base, err := ParseDefaults(embeddedDefaults)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing defaults %s: %w", path, err)
	}
	var overlay Defaults
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("parse pricing defaults %s: %w", path, err)
	}
	if len(overlay.Generic.Tiers) > 0 {
		base.Generic = overlay.Generic
	}
	for k, v := range overlay.Styles {
		base.Styles[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return base, nil
}

var (
	embeddedOnce  sync.Once
	embeddedTable *Defaults
)

// DefaultPricing prices style from the embedded table.
func DefaultPricing(style string) *model.Pricing {
	embeddedOnce.Do(func() {
		embeddedTable = lo.Must(ParseDefaults(embeddedDefaults))
	})
	return embeddedTable.For(style)
}

// For builds pricing for style, using the generic tiers for unknown styles.
func (d *Defaults) For(style string) *model.Pricing {
	entry, ok := d.Styles[strings.ToUpper(strings.TrimSpace(style))]
	if !ok {
		entry = d.Generic
	}
	ps := model.NewPriceSet()
	for _, t := range entry.Tiers {
		for _, size := range t.Sizes {
			ps.Original[size] = t.Original
			ps.Sale[size] = t.Sale
			ps.Program[size] = t.Program
			if t.CaseSize > 0 {
				ps.CaseSize[size] = t.CaseSize
			} else {
				ps.CaseSize[size] = CaseSizeFor(style, size)
			}
		}
	}
	return &model.Pricing{
		Style:    style,
		PriceSet: ps,
		Meta:     &model.SaleMeta{},
		Source:   SourceDefault,
	}
}

// Name implements Source.
func (d *Defaults) Name() string { return SourceDefault }

// Fetch implements Source; it never fails.
func (d *Defaults) Fetch(_ context.Context, req Request) (*model.Pricing, error) {
	return d.For(req.Style), nil
}
