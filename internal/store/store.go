package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/pkg/model"
)

// CartTTL is how long an idle quote cart survives in Redis.
const CartTTL = 7 * 24 * time.Hour

// ErrNotFound is returned when a cart or quote does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the contract for quote carts and submitted quote requests.
type Store interface {
	GetCart(ctx context.Context, cartID string) (*model.QuoteCart, error)
	SaveCart(ctx context.Context, cart *model.QuoteCart) error
	DeleteCart(ctx context.Context, cartID string) error
	SaveQuoteRequest(ctx context.Context, q *model.QuoteRequest) error
	GetQuoteRequest(ctx context.Context, id string) (*model.QuoteRequest, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type HybridStore struct {
	redis  *redis.Client
	PG     DB
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid creates a Redis-first, Postgres-backed store. Postgres is optional.
func NewHybrid(redisAddr string, redisDB int, redisPass string, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (*HybridStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		DB:       redisDB,
		Password: redisPass,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	s := &HybridStore{redis: rdb, logger: logger}
	if pgURL != "" {
		pool, err := NewPGPool(ctx, pgURL, pgPoolConfig)
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}
		s.PG = pool
	}
	return s, nil
}

// NewWithClients wraps existing connections; db may be nil.
func NewWithClients(rdb *redis.Client, db DB, logger *zap.Logger) *HybridStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridStore{redis: rdb, PG: db, logger: logger}
}

// NewPGPool opens a pgx pool with the configured limits.
func NewPGPool(ctx context.Context, pgURL string, pgPoolConfig PGPoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		return nil, fmt.Errorf("invalid pg config: %w", err)
	}
	if pgPoolConfig.MaxConns > 0 {
		cfg.MaxConns = pgPoolConfig.MaxConns
	}
	if pgPoolConfig.MinConns > 0 {
		cfg.MinConns = pgPoolConfig.MinConns
	}
	if pgPoolConfig.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
	}
	if pgPoolConfig.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
	}
	if pgPoolConfig.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}

// Redis exposes the client so the response cache can share the connection.
func (s *HybridStore) Redis() *redis.Client { return s.redis }

func cartKey(cartID string) string { return "quote:cart:" + cartID }

// GetCart returns ErrNotFound when the cart expired or never existed.
func (s *HybridStore) GetCart(ctx context.Context, cartID string) (*model.QuoteCart, error) {
	var cart model.QuoteCart
	if err := s.GetJSON(ctx, cartKey(cartID), &cart); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// SaveCart writes the cart and resets its TTL.
func (s *HybridStore) SaveCart(ctx context.Context, cart *model.QuoteCart) error {
	if cart == nil || cart.ID == "" {
		return fmt.Errorf("cart id required")
	}
	if err := s.SetJSON(ctx, cartKey(cart.ID), cart, CartTTL); err != nil {
		s.logger.Error("store.redis.save_cart_failed", zap.String("cart_id", cart.ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *HybridStore) DeleteCart(ctx context.Context, cartID string) error {
	return s.redis.Del(ctx, cartKey(cartID)).Err()
}

// SaveQuoteRequest inserts a submitted quote into quotes.quote_request.
// Without Postgres the quote is kept in Redis for CartTTL instead.
func (s *HybridStore) SaveQuoteRequest(ctx context.Context, q *model.QuoteRequest) error {
	if q == nil {
		return nil
	}
	if s.PG == nil {
		s.logger.Warn("store.pg.unavailable_quote_kept_in_redis", zap.String("quote_id", q.ID))
		return s.SetJSON(ctx, "quote:request:"+q.ID, q, CartTTL)
	}

	items, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("encode quote items: %w", err)
	}
	_, err = s.PG.Exec(ctx, `
		INSERT INTO quotes.quote_request (
			id, cart_id, customer_name, email, company, phone,
			notes, items, subtotal, submitted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING;
	`, q.ID, q.CartID, q.Name, q.Email, q.Company, q.Phone,
		q.Notes, items, q.Subtotal, q.SubmittedAt)
	if err != nil {
		s.logger.Error("store.pg.insert_quote_failed", zap.String("quote_id", q.ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *HybridStore) GetQuoteRequest(ctx context.Context, id string) (*model.QuoteRequest, error) {
	if s.PG == nil {
		var q model.QuoteRequest
		if err := s.GetJSON(ctx, "quote:request:"+id, &q); err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return &q, nil
	}

	const query = `
		SELECT id, cart_id, customer_name, email, company, phone,
		       notes, items, subtotal, submitted_at
		FROM quotes.quote_request
		WHERE id = $1
		LIMIT 1;
	`
	var (
		q     model.QuoteRequest
		items []byte
	)
	err := s.PG.QueryRow(ctx, query, id).Scan(&q.ID, &q.CartID, &q.Name, &q.Email,
		&q.Company, &q.Phone, &q.Notes, &items, &q.Subtotal, &q.SubmittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetQuoteRequest scan failed: %w", err)
	}
	if err := json.Unmarshal(items, &q.Items); err != nil {
		return nil, fmt.Errorf("decode quote items: %w", err)
	}
	return &q, nil
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
