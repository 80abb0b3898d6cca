package caspio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// tokenExpiryBuffer is how long before expiry a token is treated as stale.
	tokenExpiryBuffer = 60 * time.Second
	// staticTokenLifetime is assumed for a configured access token with no known expiry.
	staticTokenLifetime = 24 * time.Hour
)

type tokenEntry struct {
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// TokenManager fetches and caches Caspio bearer tokens per account.
type TokenManager struct {
	logger *zap.Logger
	client *http.Client
	now    func() time.Time
	mu     sync.Mutex
	cache  map[string]tokenEntry // base URL + client id → token
}

func NewTokenManager(logger *zap.Logger) *TokenManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenManager{
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
		cache:  make(map[string]tokenEntry),
	}
}

func cacheKey(cfg *Config) string {
	return strings.TrimRight(cfg.BaseURL, "/") + "|" + cfg.ClientID
}

// GetToken returns a valid bearer token, fetching a new one when the cached one is
// within a minute of expiry.
func (m *TokenManager) GetToken(ctx context.Context, cfg *Config) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cacheKey(cfg)
	entry, ok := m.cache[key]
	if ok && m.now().Before(entry.expiresAt.Add(-tokenExpiryBuffer)) {
		return entry.accessToken, nil
	}

	switch {
	case cfg.ClientID != "" && cfg.ClientSecret != "":
		// fetched below
	case cfg.RefreshToken != "" || entry.refreshToken != "":
		// fetched below
	case cfg.AccessToken != "":
		m.cache[key] = tokenEntry{accessToken: cfg.AccessToken, expiresAt: m.now().Add(staticTokenLifetime)}
		return cfg.AccessToken, nil
	default:
		return "", ErrNotConfigured
	}

	refresh := entry.refreshToken
	if refresh == "" {
		refresh = cfg.RefreshToken
	}
	token, err := m.fetchToken(ctx, cfg, refresh)
	if err != nil {
		return "", fmt.Errorf("caspio auth: fetch token for %q: %w", cfg.BaseURL, err)
	}
	m.store(key, token)
	return token.AccessToken, nil
}

// Refresh forces a refresh_token grant and returns the full response, including
// the rotated refresh token.
func (m *TokenManager) Refresh(ctx context.Context, cfg *Config) (*TokenResponse, error) {
	if cfg.RefreshToken == "" {
		return nil, fmt.Errorf("caspio auth: refresh token required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clientless := *cfg
	clientless.ClientID, clientless.ClientSecret = "", ""
	token, err := m.fetchToken(ctx, &clientless, cfg.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("caspio auth: refresh: %w", err)
	}
	m.store(cacheKey(cfg), token)
	return token, nil
}

// Invalidate drops the cached token, keeping any refresh token.
func (m *TokenManager) Invalidate(cfg *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := cacheKey(cfg)
	if e, ok := m.cache[key]; ok {
		m.cache[key] = tokenEntry{refreshToken: e.refreshToken}
	}
}

func (m *TokenManager) store(key string, token *TokenResponse) {
	expiresIn := time.Duration(token.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	m.cache[key] = tokenEntry{
		accessToken:  token.AccessToken,
		refreshToken: token.RefreshToken,
		expiresAt:    m.now().Add(expiresIn),
	}
	m.logger.Info("caspio.auth.token_refreshed",
		zap.Int64("expires_in_sec", token.ExpiresIn),
		zap.Bool("refresh_token_rotated", token.RefreshToken != ""))
}

// fetchToken uses client_credentials when a client id is set, else the refresh_token grant.
func (m *TokenManager) fetchToken(ctx context.Context, cfg *Config, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		form.Set("grant_type", "client_credentials")
		form.Set("client_id", cfg.ClientID)
		form.Set("client_secret", cfg.ClientSecret)
	} else {
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", refreshToken)
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("caspio returned empty access_token")
	}
	return &token, nil
}
