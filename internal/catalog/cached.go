package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/vborodin/storefront/internal/catalog/cache"
	"github.com/vborodin/storefront/internal/domain"
)

// CachedClient puts a TTL cache in front of a catalog client so re-mounting
// the catalog UI does not refetch identical queries. Misses for the same key
// are collapsed with singleflight, so concurrent cold reads cost one upstream
// call.
type CachedClient struct {
	next  Client
	cache cache.Cache
	sfg   singleflight.Group
}

func NewCachedClient(next Client, c cache.Cache) *CachedClient {
	return &CachedClient{next: next, cache: c}
}

func (c *CachedClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	key := fmt.Sprintf("catalog:product:%d", id)

	var product domain.Product
	if hit, err := c.lookup(ctx, key, &product); err != nil {
		return nil, err
	} else if hit {
		return &product, nil
	}

	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		fresh, errGet := c.next.GetProduct(ctx, id)
		if errGet != nil {
			return nil, errGet
		}
		c.store(ctx, key, fresh)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Product), nil
}

func (c *CachedClient) ListProducts(ctx context.Context, query Query) (*Page, error) {
	key := query.CacheKey()

	var page Page
	if hit, err := c.lookup(ctx, key, &page); err != nil {
		return nil, err
	} else if hit {
		return &page, nil
	}

	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		fresh, errList := c.next.ListProducts(ctx, query)
		if errList != nil {
			return nil, errList
		}
		c.store(ctx, key, fresh)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Page), nil
}

// lookup reports a cache hit and decodes into out. Cache failures other than a
// miss are logged and treated as misses; the catalog stays reachable without
// its cache.
func (c *CachedClient) lookup(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("catalog cache get error: %v", err)
		}
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("catalog cache decode error: %v", err)
		return false, nil
	}
	return true, nil
}

func (c *CachedClient) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("catalog cache encode error: %v", err)
		return
	}
	if err := c.cache.Set(ctx, key, data); err != nil {
		log.Printf("catalog cache set error: %v", err)
	}
}
