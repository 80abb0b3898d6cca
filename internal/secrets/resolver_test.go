package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/sanmar"
)

type mockProvider struct {
	calls   int
	keys    []string
	secrets map[string]map[string]string
}

func (m *mockProvider) GetSecret(_ context.Context, key string) (map[string]string, error) {
	m.calls++
	m.keys = append(m.keys, key)
	s, ok := m.secrets[key]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return s, nil
}

var _ sanmar.CredentialSource = (*SanMarResolver)(nil)

func TestSanMarResolver_CachesAndNamesSecret(t *testing.T) {
	p := &mockProvider{secrets: map[string]map[string]string{
		"prod/sanmar": {"username": "u", "password": "p", "customer_number": "123"},
	}}
	r := NewSanMarResolver(zap.NewNop(), "PROD", p, time.Hour)

	creds, err := r.SanMarCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123", creds.CustomerNumber)

	_, err = r.SanMarCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, []string{"prod/sanmar"}, p.keys)

	r.Invalidate()
	_, _ = r.SanMarCredentials(context.Background())
	assert.Equal(t, 2, p.calls)
}

func TestSanMarResolver_MissingSecret(t *testing.T) {
	r := NewSanMarResolver(zap.NewNop(), "dev", &mockProvider{}, time.Hour)
	_, err := r.SanMarCredentials(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve sanmar credentials")
}

func TestParseSanMar_Validation(t *testing.T) {
	_, err := parseSanMar(map[string]string{"password": "p"})
	assert.ErrorContains(t, err, "username")
	_, err = parseSanMar(map[string]string{"username": "u"})
	assert.ErrorContains(t, err, "password")
}

func TestParseCaspio(t *testing.T) {
	cfg, err := parseCaspio(map[string]string{"base_url": "https://c.caspio.com", "refresh_token": "rt"})
	require.NoError(t, err)
	assert.Equal(t, "rt", cfg.RefreshToken)

	_, err = parseCaspio(map[string]string{"client_id": "x"})
	assert.ErrorContains(t, err, "base_url")

	_, err = parseCaspio(map[string]string{"base_url": "https://c"})
	assert.Error(t, err)
}

func TestCaspioResolver_ParseErrorNotCached(t *testing.T) {
	p := &mockProvider{secrets: map[string]map[string]string{"dev/caspio": {"base_url": ""}}}
	r := NewCaspioResolver(zap.NewNop(), "dev", p, time.Hour)

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	_, _ = r.Resolve(context.Background())
	assert.Equal(t, 2, p.calls)
}
