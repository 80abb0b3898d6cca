package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nwca/sanmar-adapters/pkg/ttl"
)

// Memory is a process-local Cache bounded to maxEntries.
type Memory struct {
	store *ttl.Cache[[]byte]
}

func NewMemory(defaultTTL time.Duration, maxEntries int) *Memory {
	return &Memory{store: ttl.New[[]byte](defaultTTL, maxEntries)}
}

func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := m.store.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		m.store.Bust(key)
		return false, fmt.Errorf("cache decode %q: %w", key, err)
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, expiry time.Duration) error {
	if value == nil {
		return ErrNilValue
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}
	m.store.PutTTL(key, raw, expiry)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.store.Bust(key)
	return nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) (int, error) {
	return m.store.BustFunc(func(k string) bool { return strings.HasPrefix(k, prefix) }), nil
}

// StartCleaner drops expired entries every interval until stop is closed.
func (m *Memory) StartCleaner(interval time.Duration, stop <-chan struct{}) {
	m.store.StartCleaner(interval, stop)
}

// Len is the number of stored entries.
func (m *Memory) Len() int { return m.store.Len() }
