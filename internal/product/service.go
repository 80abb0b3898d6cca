package product

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

const cacheNamespace = "product"

var ErrStyleRequired = errors.New("product: style required")

// SanMarAPI is the product lookup used by Service.
type SanMarAPI interface {
	GetProductInfo(ctx context.Context, creds sanmar.Credentials, style, color, size string) (*sanmar.ProductInfoResult, error)
}

// Service returns product page data, cached per style.
type Service struct {
	logger  *zap.Logger
	api     SanMarAPI
	creds   sanmar.CredentialSource
	cache   cache.Cache
	ttl     time.Duration
	useMock bool
}

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
	}
}

// Get returns the product for style, falling back to the mock table when SanMar
// cannot answer. Only a blank style is an error.
func (s *Service) Get(ctx context.Context, style string) (*model.Product, error) {
	style = strings.ToUpper(strings.TrimSpace(style))
	if style == "" {
		return nil, ErrStyleRequired
	}

	key := cache.Key(cacheNamespace, style)
	if s.cache != nil {
		var cached model.Product
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("product.cache_read_failed", zap.String("style", style), zap.Error(err))
		}
		metrics.IncCache(cacheNamespace, hit)
		if hit {
			return &cached, nil
		}
	}

	p, err := s.fetch(ctx, style)
	if err != nil {
		s.logger.Warn("product.mock_fallback", zap.String("style", style), zap.Error(err))
		metrics.IncMockFallback(cacheNamespace)
		p = MockProduct(style)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, p, s.ttl); err != nil {
			s.logger.Warn("product.cache_write_failed", zap.String("style", style), zap.Error(err))
		}
	}
	return p, nil
}

func (s *Service) fetch(ctx context.Context, style string) (*model.Product, error) {
	if s.useMock {
		return nil, errors.New("mock data enabled")
	}
	creds, err := s.creds.SanMarCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("sanmar credentials: %w", err)
	}
	res, err := s.api.GetProductInfo(ctx, creds, style, "", "")
	if err != nil {
		return nil, err
	}
	p := sanmar.ProductFromInfo(style, res)
	if len(p.Colors) == 0 {
		return nil, sanmar.ErrEmptyResponse
	}
	return p, nil
}

// ClearCache drops cached products.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.DeletePrefix(ctx, cacheNamespace+":")
}
