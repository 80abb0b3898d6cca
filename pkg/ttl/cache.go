package ttl

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
	storedAt  time.Time
}

// Cache is a thread-safe in-memory TTL cache. When MaxEntries is reached the
// oldest stored entry is evicted.
type Cache[T any] struct {
	mu         sync.RWMutex
	data       map[string]entry[T]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a cache with a default TTL. maxEntries <= 0 means unbounded.
func New[T any](defaultTTL time.Duration, maxEntries int) *Cache[T] {
	return &Cache[T]{
		data:       make(map[string]entry[T]),
		ttl:        defaultTTL,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns a live value. Expired entries are dropped on read.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	item, ok := c.data[key]
	c.mu.RUnlock()
	var zero T
	if !ok {
		return zero, false
	}
	if c.now().After(item.expiresAt) {
		c.mu.Lock()
		if cur, still := c.data[key]; still && cur.expiresAt.Equal(item.expiresAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return item.value, true
}

// Put stores value with the default TTL.
func (c *Cache[T]) Put(key string, value T) {
	c.PutTTL(key, value, c.ttl)
}

// PutTTL stores value with an explicit TTL.
func (c *Cache[T]) PutTTL(key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.data[key]; !exists && c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.data[key] = entry[T]{value: value, expiresAt: now.Add(ttl), storedAt: now}
}

// Bust removes a single key.
func (c *Cache[T]) Bust(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// BustFunc removes every key for which match returns true and reports how many went.
func (c *Cache[T]) BustFunc(match func(key string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.data {
		if match(k) {
			delete(c.data, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// StartCleaner drops expired entries every interval until stop is closed.
func (c *Cache[T]) StartCleaner(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-stop:
			return
		}
	}
}

func (c *Cache[T]) cleanupExpired() {
	now := c.now()
	c.mu.Lock()
	for k, v := range c.data {
		if now.After(v.expiresAt) {
			delete(c.data, k)
		}
	}
	c.mu.Unlock()
}

func (c *Cache[T]) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, v := range c.data {
		if !found || v.storedAt.Before(oldest) {
			oldestKey, oldest, found = k, v.storedAt, true
		}
	}
	if found {
		delete(c.data, oldestKey)
	}
}
