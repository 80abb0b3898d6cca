package secrets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/internal/sanmar"
	pkgsecrets "github.com/nwca/sanmar-adapters/pkg/secrets"
	"github.com/nwca/sanmar-adapters/pkg/ttl"
)

// EnvFields lists the keys each secret carries, for pkgsecrets.NewEnvProvider.
// "sanmar" maps to SANMAR_USERNAME, SANMAR_PASSWORD, SANMAR_CUSTOMER_NUMBER.
var EnvFields = map[string][]string{
	"sanmar": {"username", "password", "customer_number"},
	"caspio": {"base_url", "client_id", "client_secret", "access_token", "refresh_token"},
}

func parseSanMar(m map[string]string) (sanmar.Credentials, error) {
	creds := sanmar.Credentials{
		Username:       m["username"],
		Password:       m["password"],
		CustomerNumber: m["customer_number"],
	}
	if creds.Username == "" {
		return creds, fmt.Errorf("missing username")
	}
	if creds.Password == "" {
		return creds, fmt.Errorf("missing password")
	}
	return creds, nil
}

func parseCaspio(m map[string]string) (caspio.Config, error) {
	cfg := caspio.Config{
		BaseURL:      m["base_url"],
		ClientID:     m["client_id"],
		ClientSecret: m["client_secret"],
		AccessToken:  m["access_token"],
		RefreshToken: m["refresh_token"],
	}
	if cfg.BaseURL == "" {
		return cfg, fmt.Errorf("missing base_url")
	}
	if cfg.ClientID == "" && cfg.AccessToken == "" && cfg.RefreshToken == "" {
		return cfg, fmt.Errorf("missing client_id, access_token or refresh_token")
	}
	return cfg, nil
}

// SanMarResolver serves SanMar web-service credentials from a provider.
type SanMarResolver struct {
	*Resolver[sanmar.Credentials]
}

// NewSanMarResolver resolves {env}/sanmar, caching for cacheTTL.
func NewSanMarResolver(logger *zap.Logger, env string, provider pkgsecrets.Provider, cacheTTL time.Duration) *SanMarResolver {
	return &SanMarResolver{NewResolver(logger, env, "sanmar", provider, ttl.New[sanmar.Credentials](cacheTTL, 0), parseSanMar)}
}

// SanMarCredentials implements sanmar.CredentialSource.
func (r *SanMarResolver) SanMarCredentials(ctx context.Context) (sanmar.Credentials, error) {
	return r.Resolve(ctx)
}

// NewCaspioResolver resolves {env}/caspio, caching for cacheTTL.
func NewCaspioResolver(logger *zap.Logger, env string, provider pkgsecrets.Provider, cacheTTL time.Duration) *Resolver[caspio.Config] {
	return NewResolver(logger, env, "caspio", provider, ttl.New[caspio.Config](cacheTTL, 0), parseCaspio)
}
