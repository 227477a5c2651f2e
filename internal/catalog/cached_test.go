package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vborodin/storefront/internal/catalog/cache"
	"github.com/vborodin/storefront/internal/domain"
	"github.com/vborodin/storefront/internal/pkg/clock"
)

type countingClient struct {
	mu        sync.Mutex
	getCalls  int
	listCalls int
	product   *domain.Product
	page      *Page
	err       error
}

func (c *countingClient) GetProduct(context.Context, int64) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getCalls++
	if c.err != nil {
		return nil, c.err
	}
	return c.product, nil
}

func (c *countingClient) ListProducts(context.Context, Query) (*Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls++
	if c.err != nil {
		return nil, c.err
	}
	return c.page, nil
}

func testProduct() *domain.Product {
	return &domain.Product{
		ID:    7,
		Name:  "Desk lamp",
		Price: decimal.RequireFromString("34.50"),
		Stock: 12,
	}
}

func TestCachedClient_SecondReadHitsCache(t *testing.T) {
	upstream := &countingClient{product: testProduct()}
	cached := NewCachedClient(upstream, cache.NewMemoryCache(5*time.Minute, nil))
	ctx := context.Background()

	first, err := cached.GetProduct(ctx, 7)
	require.NoError(t, err)

	second, err := cached.GetProduct(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.getCalls)
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, first.Price.Equal(second.Price))
}

func TestCachedClient_ExpiredEntryRefetches(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))
	upstream := &countingClient{page: &Page{Page: 1, TotalCount: 3}}
	cached := NewCachedClient(upstream, cache.NewMemoryCache(5*time.Minute, clk))
	ctx := context.Background()
	query := Query{Category: "desks"}

	_, err := cached.ListProducts(ctx, query)
	require.NoError(t, err)

	clk.Advance(6 * time.Minute)

	_, err = cached.ListProducts(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.listCalls)
}

func TestCachedClient_EquivalentQueriesShareEntry(t *testing.T) {
	upstream := &countingClient{page: &Page{Page: 1}}
	cached := NewCachedClient(upstream, cache.NewMemoryCache(5*time.Minute, nil))
	ctx := context.Background()

	min := decimal.RequireFromString("10")
	_, err := cached.ListProducts(ctx, Query{Category: "desks", MinPrice: &min, Page: 1})
	require.NoError(t, err)

	// Same filter, fields populated in a different order.
	_, err = cached.ListProducts(ctx, Query{Page: 1, MinPrice: &min, Category: "desks"})
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.listCalls)
}

func TestCachedClient_UpstreamErrorNotCached(t *testing.T) {
	upstream := &countingClient{err: errors.New("upstream down")}
	cached := NewCachedClient(upstream, cache.NewMemoryCache(5*time.Minute, nil))
	ctx := context.Background()

	_, err := cached.GetProduct(ctx, 7)
	require.Error(t, err)

	upstream.mu.Lock()
	upstream.err = nil
	upstream.product = testProduct()
	upstream.mu.Unlock()

	product, err := cached.GetProduct(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Desk lamp", product.Name)
	assert.Equal(t, 2, upstream.getCalls)
}

func TestCachedClient_BrokenCacheDegradesToUpstream(t *testing.T) {
	upstream := &countingClient{product: testProduct()}
	cached := NewCachedClient(upstream, brokenCache{})
	ctx := context.Background()

	product, err := cached.GetProduct(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), product.ID)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("cache backend unavailable")
}

func (brokenCache) Set(context.Context, string, []byte) error {
	return errors.New("cache backend unavailable")
}

func (brokenCache) Delete(context.Context, string) error {
	return errors.New("cache backend unavailable")
}
