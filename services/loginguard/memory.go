package loginguard

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter keeps counters in process memory. Counters are not shared
// between replicas.
type MemoryLimiter struct {
	cfg   Config
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewMemoryLimiter creates a MemoryLimiter.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:   cfg,
		cache: gocache.New(cfg.Window, time.Minute),
	}
}

// Reserve implements Limiter.
func (l *MemoryLimiter) Reserve(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := normalizeKey(key)
	if err := l.cache.Add(k, 1, l.cfg.Window); err == nil {
		return l.cfg.result(1, l.cfg.Window), nil
	}
	n, err := l.cache.IncrementInt(k, 1)
	if err != nil {
		// Expired between Add and IncrementInt.
		l.cache.Set(k, 1, l.cfg.Window)
		return l.cfg.result(1, l.cfg.Window), nil
	}
	_, exp, _ := l.cache.GetWithExpiration(k)
	return l.cfg.result(n, time.Until(exp)), nil
}

// Reset implements Limiter.
func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.cache.Delete(normalizeKey(key))
	return nil
}
