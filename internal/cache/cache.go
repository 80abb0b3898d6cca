// Package cache is the shared response cache behind the catalog services.
// Values are stored as JSON so memory and Redis backends behave the same.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNilValue is returned by Set when asked to cache nil.
var ErrNilValue = errors.New("cache: nil value")

// Cache stores JSON-encodable values with a TTL.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Key joins namespace and parts with ':' in the form "pricing:PC61:Black:L".
func Key(namespace string, parts ...string) string {
	n := len(namespace)
	for _, p := range parts {
		n += len(p) + 1
	}
	b := make([]byte, 0, n)
	b = append(b, namespace...)
	for _, p := range parts {
		b = append(b, ':')
		b = append(b, p...)
	}
	return string(b)
}
