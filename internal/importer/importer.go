package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nwca/sanmar-adapters/internal/archive"
	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/internal/metrics"
	"github.com/nwca/sanmar-adapters/internal/publisher"
	"github.com/nwca/sanmar-adapters/internal/sanmar"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const timestampLayout = "2006-01-02 15:04:05"

var ErrNoStyles = errors.New("no styles to import")

// SanMarAPI is the slice of the SanMar client the import calls.
type SanMarAPI interface {
	GetInventoryLevels(ctx context.Context, creds sanmar.Credentials, style string) (*sanmar.InventoryResult, error)
	GetPricing(ctx context.Context, creds sanmar.Credentials, style, color, size string) (*sanmar.PricingResult, error)
}

// Catalog supplies the style list and color mappings.
type Catalog interface {
	Styles(ctx context.Context) ([]string, error)
	ColorMappings(ctx context.Context) (map[string]string, error)
}

// TableWriter replaces table contents.
type TableWriter interface {
	DeleteAll(ctx context.Context, table string) (int, error)
	Insert(ctx context.Context, table string, record any) error
	InvalidateCache(ctx context.Context, table string)
}

// Options control one run.
type Options struct {
	// Styles overrides the catalog style list.
	Styles []string
	// TestMode limits the run to the first TestStyles styles.
	TestMode   bool
	TestStyles int
	Workers    int
	BatchSize  int
	BatchPause time.Duration
	// DryRun fetches and builds rows without touching the tables.
	DryRun bool
}

func (o Options) mode() string {
	switch {
	case o.TestMode:
		return "test"
	case len(o.Styles) > 0:
		return "styles"
	default:
		return "full"
	}
}

// Importer copies SanMar inventory and pricing into the Caspio tables.
type Importer struct {
	logger  *zap.Logger
	api     SanMarAPI
	creds   sanmar.CredentialSource
	catalog Catalog
	writer  TableWriter
	tables  caspio.Tables
	runs    *archive.ImportRunWriter
	pub     publisher.EventPublisher
	source  string
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

func New(
	logger *zap.Logger,
	api SanMarAPI,
	creds sanmar.CredentialSource,
	cat Catalog,
	writer TableWriter,
	tables caspio.Tables,
	runs *archive.ImportRunWriter,
	pub publisher.EventPublisher,
	source string,
) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Importer{
		logger:  logger,
		api:     api,
		creds:   creds,
		catalog: cat,
		writer:  writer,
		tables:  tables,
		runs:    runs,
		pub:     pub,
		source:  source,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// styleResult is what one worker gathers for a style.
type styleResult struct {
	inventory []caspio.InventoryRow
	pricing   []caspio.PricingRow
}

// Run performs one import and returns its summary. The summary is returned
// alongside any error so callers can report partial progress.
func (im *Importer) Run(ctx context.Context, opts Options) (*model.ImportRun, error) {
	opts = withDefaults(opts)
	run := &model.ImportRun{
		ID:        uuid.New(),
		Mode:      opts.mode(),
		StartedAt: im.now().UTC(),
		Status:    StatusRunning,
	}
	_ = im.runs.Upsert(ctx, run)

	err := im.run(ctx, opts, run)
	run.FinishedAt = im.now().UTC()
	if err != nil {
		run.Status = StatusFailed
		run.ErrorMessage = err.Error()
		metrics.IncError("importer", "run_failed")
		im.logger.Error("importer.run_failed", zap.String("run_id", run.ID.String()), zap.Error(err))
	} else {
		run.Status = StatusCompleted
		metrics.SetImportSuccess(run.FinishedAt)
		im.logger.Info("importer.run_completed",
			zap.String("run_id", run.ID.String()),
			zap.Int("styles", run.Styles),
			zap.Int("inventory_rows", run.InventoryRows),
			zap.Int("pricing_rows", run.PricingRows),
			zap.Int("failed_styles", len(run.FailedStyles)),
			zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))
	}

	// Reporting uses a fresh context so a cancelled run is still recorded.
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	_ = im.runs.Upsert(reportCtx, run)
	if perr := publisher.Emit(reportCtx, im.pub, model.SubjectImportCompleted, "catalog.import."+run.Status, im.source, run); perr != nil {
		im.logger.Warn("importer.publish_failed", zap.Error(perr))
	}
	return run, err
}

func (im *Importer) run(ctx context.Context, opts Options, run *model.ImportRun) error {
	styles, err := im.styles(ctx, opts)
	if err != nil {
		return err
	}
	run.Styles = len(styles)

	colors, err := im.catalog.ColorMappings(ctx)
	if err != nil {
		im.logger.Warn("importer.color_mappings_unavailable", zap.Error(err))
		colors = map[string]string{}
	}

	creds, err := im.creds.SanMarCredentials(ctx)
	if err != nil {
		return fmt.Errorf("sanmar credentials: %w", err)
	}
	if !creds.Valid() {
		return sanmar.ErrNoCredentials
	}

	results, failed := im.fetchAll(ctx, opts.Workers, creds, styles, colors)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	run.FailedStyles = failed

	var (
		invRows   []caspio.InventoryRow
		priceRows []caspio.PricingRow
	)
	for _, s := range styles {
		if r, ok := results[s]; ok {
			invRows = append(invRows, r.inventory...)
			priceRows = append(priceRows, r.pricing...)
		}
	}
	if len(invRows) == 0 {
		return fmt.Errorf("no inventory rows fetched for %d styles", len(styles))
	}
	if len(priceRows) == 0 {
		return fmt.Errorf("no pricing rows fetched for %d styles", len(styles))
	}

	if opts.DryRun {
		run.InventoryRows, run.PricingRows = len(invRows), len(priceRows)
		im.logger.Info("importer.dry_run", zap.Int("inventory_rows", len(invRows)), zap.Int("pricing_rows", len(priceRows)))
		return nil
	}

	n, err := replaceAll(ctx, im, im.tables.Inventory, invRows, opts)
	run.InventoryRows = n
	if err != nil {
		return err
	}
	n, err = replaceAll(ctx, im, im.tables.Pricing, priceRows, opts)
	run.PricingRows = n
	return err
}

func (im *Importer) styles(ctx context.Context, opts Options) ([]string, error) {
	styles := opts.Styles
	if len(styles) == 0 {
		var err error
		if styles, err = im.catalog.Styles(ctx); err != nil {
			return nil, fmt.Errorf("load styles: %w", err)
		}
	}
	styles = lo.Uniq(lo.FilterMap(styles, func(s string, _ int) (string, bool) {
		s = strings.ToUpper(strings.TrimSpace(s))
		return s, s != ""
	}))
	if opts.TestMode && len(styles) > opts.TestStyles {
		styles = styles[:opts.TestStyles]
	}
	if len(styles) == 0 {
		return nil, ErrNoStyles
	}
	return styles, nil
}

// fetchAll runs one worker per style, bounded by workers. A failing style is
// recorded and skipped.
func (im *Importer) fetchAll(ctx context.Context, workers int, creds sanmar.Credentials, styles []string, colors map[string]string) (map[string]styleResult, []string) {
	var (
		mu      sync.Mutex
		results = make(map[string]styleResult, len(styles))
		failed  []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, style := range styles {
		g.Go(func() error {
			im.logger.Debug("importer.fetch_style", zap.String("style", style), zap.Int("n", i+1), zap.Int("of", len(styles)))
			r, err := im.fetchStyle(gctx, creds, style, colors)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				im.logger.Warn("importer.style_failed", zap.String("style", style), zap.Error(err))
				failed = append(failed, style)
				return nil
			}
			results[style] = r
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(failed)
	return results, failed
}

func (im *Importer) fetchStyle(ctx context.Context, creds sanmar.Credentials, style string, colors map[string]string) (styleResult, error) {
	stamp := im.now().Format(timestampLayout)
	var out styleResult

	inv, invErr := im.api.GetInventoryLevels(ctx, creds, style)
	if invErr == nil {
		out.inventory = InventoryRows(style, inv, colors, stamp)
	}
	prices, priceErr := im.api.GetPricing(ctx, creds, style, "", "")
	if priceErr == nil {
		out.pricing = PricingRows(style, prices, colors)
	}
	if invErr != nil && priceErr != nil {
		return out, errors.Join(invErr, priceErr)
	}
	return out, nil
}

// InventoryRows flattens a PromoStandards inventory response into one row per
// part and warehouse. Parts without a color or size are skipped.
func InventoryRows(style string, res *sanmar.InventoryResult, colors map[string]string, stamp string) []caspio.InventoryRow {
	if res == nil {
		return nil
	}
	var rows []caspio.InventoryRow
	for _, part := range res.Parts {
		color, size := part.PartColor, part.LabelSize
		if color == "" || size == "" {
			var ok bool
			if color, size, ok = sanmar.SplitPart(style, part.PartID, part.Description); !ok {
				continue
			}
		}
		display := displayColor(colors, color)
		for _, loc := range part.Locations {
			if loc.ID == "" {
				continue
			}
			rows = append(rows, caspio.InventoryRow{
				Style:        style,
				ColorName:    color,
				DisplayColor: display,
				Size:         size,
				WarehouseID:  caspio.FlexString(loc.ID),
				Quantity:     caspio.FlexFloat(loc.Quantity.Int()),
				LastUpdated:  stamp,
			})
		}
	}
	return rows
}

// PricingRows maps pricing service items to table rows. Program price follows
// sanmar.ProgramPrice; case size comes from the catalog table.
func PricingRows(style string, res *sanmar.PricingResult, colors map[string]string) []caspio.PricingRow {
	if res == nil {
		return nil
	}
	rows := make([]caspio.PricingRow, 0, len(res.Items))
	for _, it := range res.Items {
		itemStyle := it.Style
		if itemStyle == "" {
			itemStyle = style
		}
		rows = append(rows, caspio.PricingRow{
			Style:        itemStyle,
			ColorName:    it.Color,
			DisplayColor: displayColor(colors, it.Color),
			Size:         it.Size,
			PiecePrice:   caspio.FlexFloat(it.PiecePrice.Float()),
			CasePrice:    caspio.FlexFloat(it.CasePrice.Float()),
			ProgramPrice: caspio.FlexFloat(sanmar.ProgramPrice(it.PiecePrice, it.SalePrice, it.MyPrice).Float()),
			CaseSize:     caspio.FlexFloat(catalog.CaseSizeFor(itemStyle, it.Size)),
		})
	}
	return rows
}

func displayColor(colors map[string]string, color string) string {
	if d, ok := colors[color]; ok && d != "" {
		return d
	}
	return color
}

// replaceAll empties table and inserts rows in batches, pausing between batches.
func replaceAll[T any](ctx context.Context, im *Importer, table string, rows []T, opts Options) (int, error) {
	deleted, err := im.writer.DeleteAll(ctx, table)
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}
	im.logger.Info("importer.table_cleared", zap.String("table", table), zap.Int("deleted", deleted))

	inserted := 0
	batches := lo.Chunk(rows, opts.BatchSize)
	for i, batch := range batches {
		for _, row := range batch {
			if err := im.writer.Insert(ctx, table, row); err != nil {
				metrics.AddImportRows(table, inserted)
				return inserted, fmt.Errorf("insert into %s after %d rows: %w", table, inserted, err)
			}
			inserted++
		}
		im.logger.Debug("importer.batch_inserted",
			zap.String("table", table),
			zap.Int("batch", i+1),
			zap.Int("of", len(batches)),
			zap.Int("inserted", inserted))
		if i < len(batches)-1 && opts.BatchPause > 0 {
			if err := im.sleep(ctx, opts.BatchPause); err != nil {
				metrics.AddImportRows(table, inserted)
				return inserted, err
			}
		}
	}
	metrics.AddImportRows(table, inserted)
	im.writer.InvalidateCache(ctx, table)
	return inserted, nil
}

func withDefaults(o Options) Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.TestStyles <= 0 {
		o.TestStyles = 5
	}
	return o
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
