package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/rate"
)

// DefaultBackoff is exponential with a 0.5s factor: 0.5s, 1s, 2s, ...
func DefaultBackoff(attempt int) time.Duration {
	return time.Duration(float64(500*time.Millisecond) * float64(int(1)<<attempt))
}

// Retryable reports whether an upstream status is worth another attempt.
func Retryable(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// StatusError is returned for non-2xx responses when no error handler is set.
type StatusError struct {
	Upstream string
	Status   int
	Body     []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d", e.Upstream, e.Status)
}

// Observer receives one call per attempt; status is 0 on transport errors.
type Observer func(upstream string, status int, elapsed time.Duration)

// Executor runs rate-limited, retrying HTTP requests against one upstream.
type Executor struct {
	logger       *zap.Logger
	rateMgr      *rate.Manager
	http         *http.Client
	retryMax     int
	upstream     string
	errorHandler func(status int, body []byte) error
	backoff      func(attempt int) time.Duration
	observe      Observer
}

// New creates an Executor. errorHandler maps non-retryable failure responses to
// an upstream-specific error; when nil a *StatusError is returned.
func New(
	logger *zap.Logger,
	rateMgr *rate.Manager,
	httpClient *http.Client,
	retryMax int,
	upstream string,
	errorHandler func(status int, body []byte) error,
) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Executor{
		logger:       logger,
		rateMgr:      rateMgr,
		http:         httpClient,
		retryMax:     retryMax,
		upstream:     upstream,
		errorHandler: errorHandler,
		backoff:      DefaultBackoff,
	}
}

// WithBackoff replaces the retry schedule.
func (e *Executor) WithBackoff(fn func(attempt int) time.Duration) *Executor {
	e.backoff = fn
	return e
}

// WithObserver installs a per-attempt hook, used for metrics.
func (e *Executor) WithObserver(fn Observer) *Executor {
	e.observe = fn
	return e
}

// Upstream returns the tag used in logs and errors.
func (e *Executor) Upstream() string { return e.upstream }

// DoJSON executes req and JSON-decodes a 2xx body into out.
func (e *Executor) DoJSON(ctx context.Context, req *http.Request, rateLimitKey string, out any) error {
	body, err := e.Do(ctx, req, rateLimitKey)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		e.logger.Warn(e.upstream+".decode_failed",
			zap.Error(err),
			zap.String("url", req.URL.String()),
			zap.ByteString("body", truncate(body, 512)))
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

// DoXML executes req and XML-decodes a 2xx body into out.
func (e *Executor) DoXML(ctx context.Context, req *http.Request, rateLimitKey string, out any) error {
	body, err := e.Do(ctx, req, rateLimitKey)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := xml.Unmarshal(body, out); err != nil {
		e.logger.Warn(e.upstream+".decode_failed",
			zap.Error(err),
			zap.String("url", req.URL.String()),
			zap.ByteString("body", truncate(body, 512)))
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

// Do executes req with rate limiting and retries, returning the raw 2xx body.
// Request bodies are replayed through req.GetBody on each retry.
func (e *Executor) Do(ctx context.Context, req *http.Request, rateLimitKey string) ([]byte, error) {
	req = req.WithContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= e.retryMax; attempt++ {
		if attempt > 0 {
			if err := e.sleep(ctx, attempt-1); err != nil {
				return nil, err
			}
			if req.GetBody != nil {
				rewound, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("rewind request body: %w", err)
				}
				req.Body = rewound
			}
		}
		if e.rateMgr != nil {
			if err := e.rateMgr.Wait(ctx, rateLimitKey); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		start := time.Now()
		resp, err := e.http.Do(req)
		if err != nil {
			e.record(0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			e.logger.Warn(e.upstream+".http_failed",
				zap.String("url", req.URL.String()),
				zap.Error(err),
				zap.Int("attempt", attempt))
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		elapsed := time.Since(start)
		e.record(resp.StatusCode, elapsed)

		if readErr != nil {
			lastErr = fmt.Errorf("read body: %w", readErr)
			continue
		}

		if Retryable(resp.StatusCode) {
			e.logger.Warn(e.upstream+".server_error",
				zap.Int("status", resp.StatusCode),
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt),
				zap.Duration("latency", elapsed))
			lastErr = &StatusError{Upstream: e.upstream, Status: resp.StatusCode, Body: body}
			continue
		}

		if resp.StatusCode >= 300 {
			if e.errorHandler != nil {
				return nil, e.errorHandler(resp.StatusCode, body)
			}
			return nil, &StatusError{Upstream: e.upstream, Status: resp.StatusCode, Body: body}
		}

		e.logger.Debug(e.upstream+".http_success",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", elapsed))
		return body, nil
	}

	return nil, fmt.Errorf("%s request failed after %d attempts: %w", e.upstream, e.retryMax+1, lastErr)
}

func (e *Executor) sleep(ctx context.Context, attempt int) error {
	t := time.NewTimer(e.backoff(attempt))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) record(status int, elapsed time.Duration) {
	if e.observe != nil {
		e.observe(e.upstream, status, elapsed)
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
