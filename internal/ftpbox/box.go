package ftpbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/httpclient"
	"github.com/nwca/sanmar-adapters/internal/metrics"
)

const (
	boxAPIBase    = "https://api.box.com"
	boxUploadBase = "https://upload.box.com"
	boxRateKey    = "box"
)

// BoxConfig authenticates with Box client credentials on behalf of an enterprise.
type BoxConfig struct {
	ClientID     string
	ClientSecret string
	EnterpriseID string
	FolderID     string
	APIBase      string
	UploadBase   string
}

type boxToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type boxFile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SharedLink *struct {
		URL string `json:"url"`
	} `json:"shared_link"`
}

// BoxClient uploads files to a Box folder.
type BoxClient struct {
	logger *zap.Logger
	exec   *httpclient.Executor
	cfg    BoxConfig
	now    func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewBoxClient(logger *zap.Logger, cfg BoxConfig, timeout time.Duration) *BoxClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIBase == "" {
		cfg.APIBase = boxAPIBase
	}
	if cfg.UploadBase == "" {
		cfg.UploadBase = boxUploadBase
	}
	if cfg.FolderID == "" {
		cfg.FolderID = "0"
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	cfg.UploadBase = strings.TrimRight(cfg.UploadBase, "/")
	exec := httpclient.New(logger, nil, &http.Client{Timeout: timeout}, 2, boxRateKey, nil).
		WithObserver(metrics.ObserveUpstream)
	return &BoxClient{logger: logger, exec: exec, cfg: cfg, now: time.Now}
}

// WithBackoff overrides the retry schedule.
func (c *BoxClient) WithBackoff(fn func(attempt int) time.Duration) *BoxClient {
	c.exec.WithBackoff(fn)
	return c
}

func (c *BoxClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.expires.Add(-time.Minute)) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":       {"client_credentials"},
		"client_id":        {c.cfg.ClientID},
		"client_secret":    {c.cfg.ClientSecret},
		"box_subject_type": {"enterprise"},
		"box_subject_id":   {c.cfg.EnterpriseID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok boxToken
	if err := c.exec.DoJSON(ctx, req, boxRateKey, &tok); err != nil {
		return "", fmt.Errorf("box auth: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("box auth: empty access_token")
	}
	c.token = tok.AccessToken
	c.expires = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	c.logger.Info("ftpbox.box_token_refreshed", zap.Int64("expires_in_sec", tok.ExpiresIn))
	return c.token, nil
}

// Upload sends content as a new file named name in the configured folder and
// returns the Box file id.
func (c *BoxClient) Upload(ctx context.Context, name string, content io.Reader) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	attrs, _ := json.Marshal(map[string]any{
		"name":   name,
		"parent": map[string]string{"id": c.cfg.FolderID},
	})
	if err := mw.WriteField("attributes", string(attrs)); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("buffer upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.UploadBase+"/api/2.0/files/content", bytes.NewReader(body.Bytes()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		Entries []boxFile `json:"entries"`
	}
	if err := c.exec.DoJSON(ctx, req, boxRateKey, &resp); err != nil {
		return "", fmt.Errorf("box upload %s: %w", name, err)
	}
	if len(resp.Entries) == 0 || resp.Entries[0].ID == "" {
		return "", fmt.Errorf("box upload %s: no file in response", name)
	}
	c.logger.Info("ftpbox.box_uploaded", zap.String("file_id", resp.Entries[0].ID), zap.String("name", name))
	return resp.Entries[0].ID, nil
}

// SharedLink creates (or returns) an open shared link for fileID.
func (c *BoxClient) SharedLink(ctx context.Context, fileID string) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}
	payload := []byte(`{"shared_link":{"access":"open"}}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.cfg.APIBase+"/2.0/files/"+url.PathEscape(fileID)+"?fields=shared_link", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var f boxFile
	if err := c.exec.DoJSON(ctx, req, boxRateKey, &f); err != nil {
		return "", fmt.Errorf("box shared link %s: %w", fileID, err)
	}
	if f.SharedLink == nil {
		return "", fmt.Errorf("box shared link %s: missing in response", fileID)
	}
	return f.SharedLink.URL, nil
}
