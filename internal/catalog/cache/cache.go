package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is the maximum age at which a cached catalog result is still
// served as fresh.
const DefaultTTL = 5 * time.Minute

var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-valued TTL cache for catalog query results. An entry older
// than the TTL is a miss; it is never served as fresh data.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
