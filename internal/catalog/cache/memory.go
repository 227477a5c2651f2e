package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vborodin/storefront/internal/pkg/clock"
)

type entry struct {
	data      []byte
	fetchedAt time.Time
}

// MemoryCache is the in-process TTL cache used when no Redis is configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	clk     clock.Clock
}

func NewMemoryCache(ttl time.Duration, clk clock.Clock) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		clk:     clk,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if c.clk.Now().Sub(e.fetchedAt) > c.ttl {
		delete(c.entries, key)
		return nil, ErrCacheMiss
	}
	return e.data, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{data: value, fetchedAt: c.clk.Now()}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}
