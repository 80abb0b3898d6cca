package rate

import (
	"context"
	"sync"
	"time"
)

// Config is a token bucket: RequestsPerSecond refill, Burst capacity.
// After a denied request the bucket stays closed for Cooldown.
type Config struct {
	RequestsPerSecond float64
	Burst             int
	Cooldown          time.Duration
}

// Limiter implements a token bucket rate limiter.
type Limiter struct {
	mu        sync.Mutex
	tokens    float64
	last      time.Time
	rate      float64
	burst     float64
	cooldown  time.Duration
	blockedTo time.Time
	now       func() time.Time
}

// New creates a limiter with a full bucket.
func New(cfg Config) *Limiter {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		tokens:   float64(burst),
		last:     time.Now(),
		rate:     cfg.RequestsPerSecond,
		burst:    float64(burst),
		cooldown: cfg.Cooldown,
		now:      time.Now,
	}
}

// Allow takes a token if one is available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	l.last = now
	if l.tokens > l.burst {
		l.tokens = l.burst
	}

	if now.Before(l.blockedTo) {
		return false
	}
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	if l.cooldown > 0 {
		l.blockedTo = now.Add(l.cooldown)
	}
	return false
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if l.Allow() {
			return nil
		}
		select {
		case <-time.After(l.pollInterval()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Limiter) pollInterval() time.Duration {
	if l.rate <= 0 {
		return 50 * time.Millisecond
	}
	d := time.Duration(float64(time.Second) / l.rate / 2)
	switch {
	case d < 5*time.Millisecond:
		return 5 * time.Millisecond
	case d > 250*time.Millisecond:
		return 250 * time.Millisecond
	}
	return d
}

// Manager hands out one limiter per upstream key (e.g. "sanmar", "caspio").
type Manager struct {
	mu        sync.RWMutex
	limiters  map[string]*Limiter
	overrides map[string]Config
	defaults  Config
}

func NewManager(defaults Config) *Manager {
	return &Manager{
		limiters:  make(map[string]*Limiter),
		overrides: make(map[string]Config),
		defaults:  defaults,
	}
}

// Configure sets the bucket for key, replacing any limiter already created for it.
func (m *Manager) Configure(key string, cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[key] = cfg
	delete(m.limiters, key)
}

func (m *Manager) GetLimiter(key string) *Limiter {
	m.mu.RLock()
	if lim, ok := m.limiters[key]; ok {
		m.mu.RUnlock()
		return lim
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if lim, ok := m.limiters[key]; ok {
		return lim
	}
	cfg, ok := m.overrides[key]
	if !ok {
		cfg = m.defaults
	}
	lim := New(cfg)
	m.limiters[key] = lim
	return lim
}

// Wait blocks until key's limiter admits a request.
func (m *Manager) Wait(ctx context.Context, key string) error {
	return m.GetLimiter(key).Wait(ctx)
}
