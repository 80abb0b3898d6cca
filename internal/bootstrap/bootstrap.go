// Package bootstrap builds the shared clients every binary in this repo starts from.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/cache"
	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/internal/metrics"
	"github.com/nwca/sanmar-adapters/internal/publisher"
	"github.com/nwca/sanmar-adapters/internal/rate"
	"github.com/nwca/sanmar-adapters/internal/sanmar"
	internalsecrets "github.com/nwca/sanmar-adapters/internal/secrets"
	"github.com/nwca/sanmar-adapters/pkg/config"
	pkgsecrets "github.com/nwca/sanmar-adapters/pkg/secrets"
)

// Event broker names accepted in EVENT_BROKER.
const (
	BrokerNATS     = "nats"
	BrokerRabbitMQ = "rabbitmq"
	BrokerNone     = "none"
)

// SecretsProvider returns the provider selected by SECRETS_SOURCE.
func SecretsProvider(ctx context.Context, cfg *config.Config) (pkgsecrets.Provider, error) {
	switch strings.ToLower(cfg.SecretsSource) {
	case "", "env":
		return pkgsecrets.NewEnvProvider(internalsecrets.EnvFields), nil
	case "aws":
		return pkgsecrets.NewAWSProvider(ctx, cfg.AWSRegion)
	default:
		return nil, fmt.Errorf("unknown SECRETS_SOURCE %q", cfg.SecretsSource)
	}
}

// RateManager configures per-upstream limits for SanMar and Caspio.
func RateManager(cfg *config.Config) *rate.Manager {
	m := rate.NewManager(rate.Config{
		RequestsPerSecond: 5,
		Burst:             10,
		Cooldown:          time.Second,
	})
	m.Configure("sanmar", rate.Config{
		RequestsPerSecond: float64(cfg.SanMar.RequestsPerSec),
		Burst:             cfg.SanMar.Burst,
		Cooldown:          time.Second,
	})
	m.Configure("caspio", rate.Config{
		RequestsPerSecond: float64(cfg.Caspio.RequestsPerSec),
		Burst:             cfg.Caspio.Burst,
		Cooldown:          time.Second,
	})
	return m
}

// SanMar builds the SOAP client and its credential source.
func SanMar(logger *zap.Logger, cfg *config.Config, rateMgr *rate.Manager, provider pkgsecrets.Provider) (*sanmar.Client, sanmar.CredentialSource) {
	client := sanmar.NewClient(logger.Named("sanmar"), rateMgr,
		sanmar.EndpointsFor(cfg.SanMar.Development), cfg.SanMar.Timeout, metrics.ObserveUpstream)
	creds := internalsecrets.NewSanMarResolver(logger, cfg.Env, provider, cfg.SecretsTTL)
	return client, creds
}

// Caspio resolves the account and builds the REST client and catalog. It returns
// caspio.ErrNotConfigured, wrapped, when no account is available.
func Caspio(ctx context.Context, logger *zap.Logger, cfg *config.Config, rateMgr *rate.Manager,
	provider pkgsecrets.Provider, responseCache cache.Cache) (*caspio.Client, *caspio.Catalog, error) {
	resolver := internalsecrets.NewCaspioResolver(logger, cfg.Env, provider, cfg.SecretsTTL)
	account, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", caspio.ErrNotConfigured, err)
	}
	client := caspio.NewClient(logger.Named("caspio"), rateMgr, caspio.NewTokenManager(logger), account, cfg.Caspio.Timeout)
	if responseCache != nil && cfg.Caspio.ResponseCache > 0 {
		client.WithCache(responseCache, cfg.Caspio.ResponseCache)
	}
	return client, caspio.NewCatalog(client, Tables(cfg)), nil
}

// Tables maps configured table names.
func Tables(cfg *config.Config) caspio.Tables {
	return caspio.Tables{
		Products:  cfg.Caspio.ProductTable,
		Inventory: cfg.Caspio.InventoryTable,
		Pricing:   cfg.Caspio.PricingTable,
		Colors:    cfg.Caspio.ColorTable,
		Quotes:    cfg.Caspio.QuoteTable,
	}
}

// Cache returns the cache selected by CACHE_BACKEND. rdb is required for "redis".
// The returned stop func halts the memory cache cleaner.
func Cache(cfg *config.Config, rdb *redis.Client) (cache.Cache, func(), error) {
	switch strings.ToLower(cfg.CacheBackend) {
	case "", "memory":
		mem := cache.NewMemory(cfg.InventoryCacheTTL, cfg.MemoryCacheSize)
		stop := make(chan struct{})
		go mem.StartCleaner(time.Minute, stop)
		return mem, func() { close(stop) }, nil
	case "redis":
		if rdb == nil {
			return nil, nil, fmt.Errorf("CACHE_BACKEND=redis needs REDIS_ADDR")
		}
		return cache.NewRedis(rdb, cfg.ServiceName+":"), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
}

// Publisher connects the broker selected by EVENT_BROKER. The NATS connection is
// returned for health checks and draining; it is nil for other brokers.
func Publisher(logger *zap.Logger, cfg *config.Config) (publisher.EventPublisher, *nats.Conn, error) {
	switch strings.ToLower(cfg.EventBroker) {
	case BrokerNATS:
		nc, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.ServiceName))
		if err != nil {
			return nil, nil, fmt.Errorf("connect nats: %w", err)
		}
		pub, err := publisher.New(nc, "evt.catalog", cfg.ServiceName)
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("init nats publisher: %w", err)
		}
		return pub, nc, nil
	case BrokerRabbitMQ:
		pub, err := publisher.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExch, cfg.ServiceName, logger)
		if err != nil {
			return nil, nil, err
		}
		return pub, nil, nil
	case "", BrokerNone:
		return publisher.Nop{}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown EVENT_BROKER %q", cfg.EventBroker)
	}
}
