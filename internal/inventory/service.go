package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/cache"
	"github.com/nwca/sanmar-adapters/internal/metrics"
	"github.com/nwca/sanmar-adapters/internal/sanmar"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

const cacheNamespace = "inventory"

// ErrStyleRequired is returned for a blank style.
var ErrStyleRequired = errors.New("inventory: style required")

// SanMarAPI is the inventory call used by Service.
type SanMarAPI interface {
	GetInventoryLevels(ctx context.Context, creds sanmar.Credentials, style string) (*sanmar.InventoryResult, error)
}

// Service serves per-style inventory from SanMar, falling back to mock data.
type Service struct {
	logger  *zap.Logger
	api     SanMarAPI
	creds   sanmar.CredentialSource
	cache   cache.Cache
	ttl     time.Duration
	useMock bool
	mock    *MockGenerator
}

// NewService wires the inventory service. api may be nil, which forces mock data.
func NewService(logger *zap.Logger, api SanMarAPI, creds sanmar.CredentialSource, c cache.Cache, ttl time.Duration, useMock bool) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:  logger,
		api:     api,
		creds:   creds,
		cache:   c,
		ttl:     ttl,
		useMock: useMock || api == nil,
		mock:    NewMockGenerator(uint64(time.Now().UnixNano())),
	}
}

// WithMockGenerator replaces the mock generator, mainly for deterministic tests.
func (s *Service) WithMockGenerator(g *MockGenerator) *Service {
	s.mock = g
	return s
}

// GetByStyle returns inventory for style. Live failures are logged and answered
// with mock data tagged Source "mock"; only a blank style is an error.
func (s *Service) GetByStyle(ctx context.Context, style string) (*model.Inventory, error) {
	style = strings.ToUpper(strings.TrimSpace(style))
	if style == "" {
		return nil, ErrStyleRequired
	}

	key := cache.Key(cacheNamespace, style)
	if s.cache != nil {
		var cached model.Inventory
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("inventory.cache_read_failed", zap.String("style", style), zap.Error(err))
		}
		metrics.IncCache(cacheNamespace, hit)
		if hit {
			return &cached, nil
		}
	}

	inv, err := s.fetch(ctx, style)
	if err != nil {
		s.logger.Warn("inventory.mock_fallback",
			zap.String("style", style),
			zap.Error(err))
		metrics.IncMockFallback(cacheNamespace)
		inv = s.mock.Generate(style)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, inv, s.ttl); err != nil {
			s.logger.Warn("inventory.cache_write_failed", zap.String("style", style), zap.Error(err))
		}
	}
	return inv, nil
}

func (s *Service) fetch(ctx context.Context, style string) (*model.Inventory, error) {
	if s.useMock {
		return nil, errors.New("mock data enabled")
	}
	creds, err := s.creds.SanMarCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("sanmar credentials: %w", err)
	}
	res, err := s.api.GetInventoryLevels(ctx, creds, style)
	if err != nil {
		return nil, err
	}
	inv := sanmar.InventoryFromParts(style, res)
	if inv.Empty() {
		return nil, sanmar.ErrEmptyResponse
	}
	s.logger.Info("inventory.fetched",
		zap.String("style", style),
		zap.Int("colors", len(inv.Colors)))
	return inv, nil
}

// ClearCache drops every cached inventory entry and reports how many were removed.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.DeletePrefix(ctx, cacheNamespace+":")
}
