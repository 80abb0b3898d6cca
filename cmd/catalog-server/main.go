package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nwca/sanmar-adapters/internal/api"
	"github.com/nwca/sanmar-adapters/internal/archive"
	"github.com/nwca/sanmar-adapters/internal/bootstrap"
	"github.com/nwca/sanmar-adapters/internal/catalog"
	"github.com/nwca/sanmar-adapters/internal/importer"
	"github.com/nwca/sanmar-adapters/internal/inventory"
	"github.com/nwca/sanmar-adapters/internal/jobs"
	"github.com/nwca/sanmar-adapters/internal/pricing"
	"github.com/nwca/sanmar-adapters/internal/product"
	"github.com/nwca/sanmar-adapters/internal/quote"
	"github.com/nwca/sanmar-adapters/internal/store"
	"github.com/nwca/sanmar-adapters/internal/web"
	"github.com/nwca/sanmar-adapters/pkg/config"
	"github.com/nwca/sanmar-adapters/pkg/logger"
	"github.com/nwca/sanmar-adapters/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [catalog-server]...")
	logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))

	// --- Store (Redis + optional Postgres) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, cfg.DatabaseURL, store.PGPoolConfig{
		MaxConns:          int32(cfg.PGMaxConns),
		MinConns:          int32(cfg.PGMinConns),
		MaxConnLifetime:   cfg.PGMaxConnLifetime,
		MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
		HealthCheckPeriod: cfg.PGHealthCheckPeriod,
	}, logg.Desugar())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}

	// --- Response cache ---
	respCache, stopCache, err := bootstrap.Cache(cfg, st.Redis())
	if err != nil {
		logg.Fatalw("failed to init cache", "error", err)
	}

	// --- Event publisher ---
	pub, nc, err := bootstrap.Publisher(logg.Desugar(), cfg)
	if err != nil {
		logg.Fatalw("failed to init publisher", "error", err, "broker", cfg.EventBroker)
	}

	// --- Credentials and upstream clients ---
	provider, err := bootstrap.SecretsProvider(ctx, cfg)
	if err != nil {
		logg.Fatalw("failed to create secrets provider", "error", err)
	}
	rateMgr := bootstrap.RateManager(cfg)
	sanmarClient, creds := bootstrap.SanMar(logg.Desugar(), cfg, rateMgr, provider)
	if cfg.UseMockData {
		logg.Warn("USE_MOCK_DATA enabled; SanMar calls are skipped")
	}

	caspioClient, caspioCatalog, err := bootstrap.Caspio(ctx, logg.Desugar(), cfg, rateMgr, provider, respCache)
	if err != nil {
		logg.Warnw("caspio disabled", "error", err)
	}

	// --- Pricing chain ---
	defaults, err := pricing.LoadDefaults(cfg.Pricing.DefaultsFile)
	if err != nil {
		logg.Fatalw("failed to load pricing defaults", "error", err)
	}
	est := pricing.NewEstimator(cfg.Pricing.SaleMultiplier, cfg.Pricing.ProgramMultiplier, cfg.Pricing.OriginalMultiplier)
	var sources []pricing.Source
	if !cfg.UseMockData {
		sources = append(sources,
			pricing.NewServiceSource(sanmarClient, creds, respCache, cfg.PricingCacheTTL),
			pricing.NewPromoSource(logg.Desugar(), sanmarClient, creds, est),
			pricing.NewProductInfoSource(sanmarClient, creds),
		)
	}
	prices := pricing.NewResolver(logg.Desugar(), defaults, catalog.DefaultColorMatcher(), sources...)

	// --- Catalog services ---
	invSvc := inventory.NewService(logg.Desugar(), sanmarClient, creds, respCache, cfg.InventoryCacheTTL, cfg.UseMockData)
	productSvc := product.NewService(logg.Desugar(), sanmarClient, creds, respCache, cfg.ProductCacheTTL, cfg.UseMockData)

	var searcher catalog.StyleSearcher
	if caspioCatalog != nil {
		searcher = caspioCatalog
	}
	suggest := catalog.NewAutocompleter(logg.Desugar(), searcher, respCache, cfg.ProductCacheTTL)

	// --- Quote cart ---
	quoteSvc := quote.NewService(logg.Desugar(), st, prices, pub, cfg.ServiceName)
	if caspioCatalog != nil {
		quoteSvc.WithMirror(caspioCatalog)
	}

	// --- Scheduled import ---
	var scheduler *jobs.ImportScheduler
	if cfg.Import.ScheduleEnabled {
		if caspioCatalog == nil {
			logg.Warn("IMPORT_SCHEDULE_ENABLED set but caspio is disabled; scheduler not started")
		} else {
			var runs *archive.ImportRunWriter
			if st.PG != nil {
				runs = archive.NewImportRunWriter(st.PG, logg.Desugar(), cfg.ServiceName)
			}
			imp := importer.New(logg.Desugar(), sanmarClient, creds, caspioCatalog, caspioClient,
				bootstrap.Tables(cfg), runs, pub, cfg.ServiceName)
			scheduler = jobs.NewImportScheduler(logg.Desugar(), imp, importer.Options{
				Styles:     cfg.Import.Styles,
				Workers:    cfg.Import.Workers,
				BatchSize:  cfg.Import.BatchSize,
				BatchPause: cfg.Import.BatchPause,
			}, cfg.Import.DailyAt)
			go scheduler.Start(ctx)
		}
	}

	// --- Pages ---
	pages, err := web.New()
	if err != nil {
		logg.Fatalw("failed to parse templates", "error", err)
	}

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	clearers := []api.CacheClearer{invSvc, productSvc,
		api.ClearFunc(func(ctx context.Context) (int, error) {
			return respCache.DeletePrefix(ctx, "pricing:")
		}),
		api.ClearFunc(func(ctx context.Context) (int, error) {
			return respCache.DeletePrefix(ctx, "autocomplete:")
		}),
	}
	if caspioClient != nil {
		clearers = append(clearers, api.ClearFunc(func(ctx context.Context) (int, error) {
			return respCache.DeletePrefix(ctx, "caspio:")
		}))
	}
	var views api.CaspioViews
	var customerCatalog api.CustomerCatalog
	if caspioCatalog != nil {
		views = caspioCatalog
		customerCatalog = caspioCatalog
	}

	api.RegisterRoutes(app, nc, st, api.Handlers{
		Catalog:  api.NewCatalogHandler(logg.Desugar(), prices, invSvc, productSvc, suggest, pages, clearers...),
		Caspio:   api.NewCaspioHandler(logg.Desugar(), views),
		Customer: api.NewCustomerHandler(logg.Desugar(), customerCatalog, quoteSvc),
	})

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	// --- Main process stays alive until interrupted ---
	logg.Infow("[catalog-server] running",
		"env", cfg.Env,
		"broker", cfg.EventBroker,
		"cache", cfg.CacheBackend,
		"caspio", caspioCatalog != nil,
		"mock", cfg.UseMockData,
		"import_schedule", cfg.Import.ScheduleEnabled)

	<-ctx.Done()
	logg.Info("shutting down [catalog-server]...")

	if scheduler != nil {
		scheduler.Stop()
	}
	stopCache()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	} else {
		pub.Close()
	}
	if err := st.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
}
