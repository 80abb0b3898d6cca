package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	pkgsecrets "github.com/nwca/sanmar-adapters/pkg/secrets"
	"github.com/nwca/sanmar-adapters/pkg/ttl"
)

// Resolver resolves one upstream's credentials from a secrets provider,
// caching results locally to reduce API calls. It is generic over the
// resolved config type T so SanMar and Caspio share the same core logic.
//
// Secret naming convention: {env}/{name}
type Resolver[T any] struct {
	logger   *zap.Logger
	env      string
	name     string
	provider pkgsecrets.Provider
	cache    *ttl.Cache[T]
	parse    func(map[string]string) (T, error)
}

// NewResolver constructs a cached resolver. parse extracts T from the raw
// secret map and should validate required fields.
func NewResolver[T any](
	logger *zap.Logger,
	env string,
	name string,
	provider pkgsecrets.Provider,
	cache *ttl.Cache[T],
	parse func(map[string]string) (T, error),
) *Resolver[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver[T]{
		logger:   logger,
		env:      env,
		name:     name,
		provider: provider,
		cache:    cache,
		parse:    parse,
	}
}

// SecretName builds the provider key. Pattern: {env}/{name}
func (r *Resolver[T]) SecretName() string {
	return strings.ToLower(fmt.Sprintf("%s/%s", r.env, r.name))
}

// Resolve fetches or returns the cached config.
func (r *Resolver[T]) Resolve(ctx context.Context) (T, error) {
	key := r.SecretName()

	if cfg, ok := r.cache.Get(key); ok {
		return cfg, nil
	}

	secretMap, err := r.provider.GetSecret(ctx, key)
	if err != nil {
		r.logger.Warn("secrets.fetch_failed",
			zap.String("key", key),
			zap.Error(err))
		var zero T
		return zero, fmt.Errorf("resolve %s credentials: %w", r.name, err)
	}

	cfg, err := r.parse(secretMap)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("parse secret %q: %w", key, err)
	}

	r.cache.Put(key, cfg)
	r.logger.Info("secrets.resolved", zap.String("name", r.name))
	return cfg, nil
}

// Invalidate drops the cached value so the next Resolve refetches.
func (r *Resolver[T]) Invalidate() {
	r.cache.Bust(r.SecretName())
}
