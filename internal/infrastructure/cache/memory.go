package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

var _ Cache = (*MemoryCache)(nil)

type entry struct {
	value   []byte
	expires time.Time
}

// MemoryCache caché local del proceso (REDIS_ADDR vacío). Expira de forma perezosa al leer.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	gens    map[string]int64
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]entry{}, gens: map[string]int64{}, now: time.Now}
}

// WithClock reloj inyectable (tests de expiración).
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *MemoryCache) Generation(_ context.Context, endpoint, tenantID string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[generationKey(TenantPrefix(endpoint, tenantID))], nil
}

func (c *MemoryCache) InvalidateTenant(ctx context.Context, tenantID string, endpoints ...string) error {
	for _, p := range prefixes(tenantID, endpoints) {
		c.mu.Lock()
		c.gens[generationKey(p)]++
		c.mu.Unlock()
		_ = c.DeletePrefix(ctx, p)
	}
	return nil
}

// Len número de entradas (incluye expiradas aún no leídas).
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
