package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider fetches a secret as a flat key/value map.
type Provider interface {
	GetSecret(ctx context.Context, key string) (map[string]string, error)
}

// EnvProvider serves secrets from environment variables. The secret key is
// upper-cased and used as a prefix, so key "sanmar" maps SANMAR_USERNAME to
// {"username": ...}.
type EnvProvider struct {
	lookup func(string) (string, bool)
	fields map[string][]string
}

// NewEnvProvider builds a provider that knows which fields each secret carries.
func NewEnvProvider(fields map[string][]string) *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv, fields: fields}
}

func (p *EnvProvider) GetSecret(_ context.Context, key string) (map[string]string, error) {
	name := key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		name = key[i+1:]
	}
	fields, ok := p.fields[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("no env mapping for secret [%s]", key)
	}
	prefix := strings.ToUpper(name) + "_"
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := p.lookup(prefix + strings.ToUpper(f)); ok && v != "" {
			out[f] = v
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("secret [%s] not set in environment", key)
	}
	return out, nil
}
