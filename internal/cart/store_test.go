package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vborodin/storefront/internal/domain"
	"github.com/vborodin/storefront/internal/repository"
)

// failingRepository simulates an unavailable persistence layer.
type failingRepository struct {
	saveCalls int
}

func (f *failingRepository) Load(context.Context) (*domain.Cart, error) {
	return nil, errors.New("storage unavailable")
}

func (f *failingRepository) Save(context.Context, *domain.Cart) error {
	f.saveCalls++
	return errors.New("storage unavailable")
}

func (f *failingRepository) Delete(context.Context) error {
	return errors.New("storage unavailable")
}

func newTestStore(t *testing.T) (*Store, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	return NewStore(context.Background(), repo), repo
}

func product(id int64, price string, discount, stock int64) domain.Product {
	return domain.Product{
		ID:              id,
		Name:            "product",
		Price:           decimal.RequireFromString(price),
		DiscountPercent: discount,
		Stock:           stock,
	}
}

func TestAddItem_RepeatedAddsMergeIntoOneLine(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	p := product(1, "10.00", 0, 10)

	require.NoError(t, store.AddItem(ctx, p, 2))
	require.NoError(t, store.AddItem(ctx, p, 3))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(5), lines[0].Quantity)
	assert.Equal(t, int64(5), store.QuantityOf(1))
}

func TestAddItem_ZeroStockFails(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.AddItem(context.Background(), product(1, "10.00", 0, 0), 1)

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Empty(t, store.Lines())
}

func TestAddItem_NewLineCappedAtStock(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddItem(context.Background(), product(1, "10.00", 0, 3), 5))

	assert.Equal(t, int64(3), store.QuantityOf(1))
}

func TestAddItem_ExceedStockScenario(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	p := product(1, "10.00", 0, 2)

	require.NoError(t, store.AddItem(ctx, p, 1))
	assert.Equal(t, int64(1), store.QuantityOf(1))

	require.NoError(t, store.AddItem(ctx, p, 1))
	assert.Equal(t, int64(2), store.QuantityOf(1))

	err := store.AddItem(ctx, p, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, int64(2), store.QuantityOf(1), "failed add must not mutate the line")
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.AddItem(context.Background(), product(1, "10.00", 0, 5), 0)

	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, product(3, "1.00", 0, 9), 1))
	require.NoError(t, store.AddItem(ctx, product(1, "1.00", 0, 9), 1))
	require.NoError(t, store.AddItem(ctx, product(2, "1.00", 0, 9), 1))
	require.NoError(t, store.AddItem(ctx, product(1, "1.00", 0, 9), 1))

	lines := store.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, int64(3), lines[0].ProductID)
	assert.Equal(t, int64(1), lines[1].ProductID)
	assert.Equal(t, int64(2), lines[2].ProductID)
}

func TestRemoveItem(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, product(1, "10.00", 0, 5), 2))
	require.NoError(t, store.RemoveItem(ctx, 1))
	assert.Empty(t, store.Lines())

	// Removing an absent product is a no-op.
	assert.NoError(t, store.RemoveItem(ctx, 42))
}

func TestSetQuantity(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, product(1, "10.00", 0, 5), 2))

	tests := []struct {
		name     string
		quantity int64
		wantErr  error
		wantQty  int64
	}{
		{"valid update", 4, nil, 4},
		{"reject below one", 0, ErrInvalidQuantity, 4},
		{"reject above stock", 6, ErrInsufficientStock, 4},
		{"exactly at stock", 5, nil, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SetQuantity(ctx, 1, tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantQty, store.QuantityOf(1))
		})
	}
}

func TestSetQuantity_MissingLine(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.SetQuantity(context.Background(), 42, 1)

	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, product(1, "10.00", 0, 5), 2))
	require.NoError(t, store.AddItem(ctx, product(2, "5.00", 0, 5), 1))
	require.NoError(t, store.Clear(ctx))

	assert.Equal(t, int64(0), store.ItemCount())
	assert.True(t, store.Subtotal().IsZero())
	assert.Empty(t, store.Lines())
}

func TestSubtotal_DiscountedLines(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, product(1, "50.00", 20, 10), 3))
	require.NoError(t, store.AddItem(ctx, product(2, "10.00", 0, 10), 1))

	// 50 * 0.8 * 3 + 10 = 130
	assert.True(t, decimal.RequireFromString("130.00").Equal(store.Subtotal()))
	assert.Equal(t, int64(4), store.ItemCount())
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	store := NewStore(ctx, repo)
	require.NoError(t, store.AddItem(ctx, product(1, "10.00", 0, 5), 2))

	reloaded := NewStore(ctx, repo)
	assert.Equal(t, int64(2), reloaded.QuantityOf(1))
}

func TestStore_DegradesWhenPersistenceFails(t *testing.T) {
	repo := &failingRepository{}
	ctx := context.Background()

	store := NewStore(ctx, repo)

	// Mutations still succeed in memory.
	require.NoError(t, store.AddItem(ctx, product(1, "10.00", 0, 5), 2))
	assert.Equal(t, int64(2), store.QuantityOf(1))
	assert.Equal(t, 1, repo.saveCalls)
}
