package caspio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/cache"
	"github.com/nwca/sanmar-adapters/internal/httpclient"
	"github.com/nwca/sanmar-adapters/internal/metrics"
	"github.com/nwca/sanmar-adapters/internal/rate"
)

const rateKey = "caspio"

// maxPageSize is the largest q.pageSize Caspio accepts.
const maxPageSize = 1000

// Record is an untyped table row.
type Record = map[string]any

// Client wraps the Caspio REST v2 tables API.
type Client struct {
	logger   *zap.Logger
	exec     *httpclient.Executor
	tokens   *TokenManager
	cfg      *Config
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewClient constructs a Caspio client for one account.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, tokens *TokenManager, cfg Config, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	exec := httpclient.New(logger, rateMgr, &http.Client{Timeout: timeout}, 3, rateKey, func(status int, body []byte) error {
		if status == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		var errResp errorResponse
		_ = json.Unmarshal(body, &errResp)
		msg := errResp.Message
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		logger.Warn("caspio.client_error",
			zap.Int("status", status),
			zap.String("code", errResp.Code),
			zap.String("message", msg))
		return &APIError{Status: status, Code: errResp.Code, Message: msg}
	}).WithObserver(metrics.ObserveUpstream)

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{logger: logger, exec: exec, tokens: tokens, cfg: &cfg}
}

// WithCache caches GET query results for ttl.
func (c *Client) WithCache(store cache.Cache, ttl time.Duration) *Client {
	c.cache, c.cacheTTL = store, ttl
	return c
}

// WithBackoff overrides the retry schedule.
func (c *Client) WithBackoff(fn func(attempt int) time.Duration) *Client {
	c.exec.WithBackoff(fn)
	return c
}

func recordsPath(table string) string {
	return "/rest/v2/tables/" + url.PathEscape(table) + "/records"
}

// do sends one authenticated request, retrying once with a fresh token on 401.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		token, err := c.tokens.GetToken(ctx, c.cfg)
		if err != nil {
			return err
		}
		u := c.cfg.BaseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		err = c.exec.DoJSON(ctx, req, rateKey, out)
		if errors.Is(err, ErrUnauthorized) && attempt == 0 {
			c.logger.Info("caspio.token_rejected", zap.String("path", path))
			c.tokens.Invalidate(c.cfg)
			continue
		}
		return err
	}
}

// Query returns one page of rows.
func (c *Client) Query(ctx context.Context, table string, q Query) ([]Record, error) {
	return QueryAs[Record](ctx, c, table, q)
}

// QueryAs returns one page of rows decoded into T, using the response cache when set.
func QueryAs[T any](ctx context.Context, c *Client, table string, q Query) ([]T, error) {
	values := q.Values()
	key := cache.Key("caspio", table, values.Encode())
	if c.cache != nil {
		var cached []T
		hit, err := c.cache.Get(ctx, key, &cached)
		metrics.IncCache("caspio", hit)
		if err == nil && hit {
			return cached, nil
		}
	}

	var env resultEnvelope[T]
	if err := c.do(ctx, http.MethodGet, recordsPath(table), values, nil, &env); err != nil {
		return nil, fmt.Errorf("caspio query %s: %w", table, err)
	}
	if c.cache != nil {
		_ = c.cache.Set(ctx, key, env.Result, c.cacheTTL)
	}
	return env.Result, nil
}

// QueryAll pages through every matching row.
func QueryAll[T any](ctx context.Context, c *Client, table string, q Query) ([]T, error) {
	if q.PageSize <= 0 || q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	var out []T
	for page := 1; ; page++ {
		q.PageNumber = page
		rows, err := QueryAs[T](ctx, c, table, q)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
		if len(rows) < q.PageSize {
			return out, nil
		}
	}
}

// Insert adds one record.
func (c *Client) Insert(ctx context.Context, table string, record any) error {
	if err := c.do(ctx, http.MethodPost, recordsPath(table), nil, record, nil); err != nil {
		return fmt.Errorf("caspio insert %s: %w", table, err)
	}
	return nil
}

// Update sets fields on every record matching where.
func (c *Client) Update(ctx context.Context, table, where string, fields any) (int, error) {
	var resp affectedResponse
	q := url.Values{"q.where": {where}}
	if err := c.do(ctx, http.MethodPut, recordsPath(table), q, fields, &resp); err != nil {
		return 0, fmt.Errorf("caspio update %s: %w", table, err)
	}
	return resp.RecordsAffected, nil
}

// Delete removes every record matching where. An empty where is rejected.
func (c *Client) Delete(ctx context.Context, table, where string) (int, error) {
	if strings.TrimSpace(where) == "" {
		return 0, fmt.Errorf("caspio delete %s: where clause required", table)
	}
	var resp affectedResponse
	if err := c.do(ctx, http.MethodDelete, recordsPath(table), url.Values{"q.where": {where}}, nil, &resp); err != nil {
		return 0, fmt.Errorf("caspio delete %s: %w", table, err)
	}
	return resp.RecordsAffected, nil
}

// DeleteAll empties table.
func (c *Client) DeleteAll(ctx context.Context, table string) (int, error) {
	return c.Delete(ctx, table, "1=1")
}

// InvalidateCache drops cached query results for table.
func (c *Client) InvalidateCache(ctx context.Context, table string) {
	if c.cache == nil {
		return
	}
	if _, err := c.cache.DeletePrefix(ctx, cache.Key("caspio", table)+":"); err != nil {
		c.logger.Warn("caspio.cache_invalidate_failed", zap.String("table", table), zap.Error(err))
	}
}
