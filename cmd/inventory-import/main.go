package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/nwca/sanmar-adapters/internal/archive"
	"github.com/nwca/sanmar-adapters/internal/bootstrap"
	"github.com/nwca/sanmar-adapters/internal/importer"
	"github.com/nwca/sanmar-adapters/internal/store"
	"github.com/nwca/sanmar-adapters/pkg/config"
	"github.com/nwca/sanmar-adapters/pkg/logger"
	"github.com/nwca/sanmar-adapters/pkg/utils"
)

func main() {
	cfg := config.Load()

	styles := flag.String("styles", "", "comma-separated styles to import instead of the full catalog")
	test := flag.Bool("test", false, "import only the first few styles")
	dryRun := flag.Bool("dry-run", false, "fetch and map rows without writing to Caspio")
	workers := flag.Int("workers", cfg.Import.Workers, "concurrent SanMar lookups")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Init("inventory-import", cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [inventory-import]...")

	provider, err := bootstrap.SecretsProvider(ctx, cfg)
	if err != nil {
		logg.Fatalw("failed to create secrets provider", "error", err)
	}
	rateMgr := bootstrap.RateManager(cfg)
	sanmarClient, creds := bootstrap.SanMar(logg.Desugar(), cfg, rateMgr, provider)

	caspioClient, caspioCatalog, err := bootstrap.Caspio(ctx, logg.Desugar(), cfg, rateMgr, provider, nil)
	if err != nil {
		logg.Fatalw("caspio is required for import", "error", err)
	}

	pub, nc, err := bootstrap.Publisher(logg.Desugar(), cfg)
	if err != nil {
		logg.Fatalw("failed to init publisher", "error", err, "broker", cfg.EventBroker)
	}
	defer func() {
		if nc != nil {
			_ = nc.Drain()
			return
		}
		pub.Close()
	}()

	var runs *archive.ImportRunWriter
	if cfg.DatabaseURL != "" {
		logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))
		pool, err := store.NewPGPool(ctx, cfg.DatabaseURL, store.PGPoolConfig{
			MaxConns:          int32(cfg.PGMaxConns),
			MinConns:          int32(cfg.PGMinConns),
			MaxConnLifetime:   cfg.PGMaxConnLifetime,
			MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
			HealthCheckPeriod: cfg.PGHealthCheckPeriod,
		})
		if err != nil {
			logg.Warnw("import runs will not be archived", "error", err)
		} else {
			defer pool.Close()
			runs = archive.NewImportRunWriter(pool, logg.Desugar(), "inventory-import")
		}
	}

	opts := importer.Options{
		Styles:     cfg.Import.Styles,
		TestMode:   *test,
		TestStyles: cfg.Import.TestStyles,
		Workers:    *workers,
		BatchSize:  cfg.Import.BatchSize,
		BatchPause: cfg.Import.BatchPause,
		DryRun:     *dryRun,
	}
	if *styles != "" {
		opts.Styles = utils.SplitList(*styles)
	}

	imp := importer.New(logg.Desugar(), sanmarClient, creds, caspioCatalog, caspioClient,
		bootstrap.Tables(cfg), runs, pub, "inventory-import")
	run, err := imp.Run(ctx, opts)
	if err != nil {
		if run != nil {
			logg.Errorw("import failed",
				"error", err,
				"styles", run.Styles,
				"failed_styles", run.FailedStyles)
		}
		logg.Fatalw("import failed", "error", err)
	}

	logg.Infow("[inventory-import] completed",
		"run", run.ID,
		"mode", run.Mode,
		"styles", run.Styles,
		"inventory_rows", run.InventoryRows,
		"pricing_rows", run.PricingRows,
		"failed_styles", len(run.FailedStyles),
		"elapsed", run.FinishedAt.Sub(run.StartedAt))
}
