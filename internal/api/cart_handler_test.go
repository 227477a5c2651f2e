package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vborodin/storefront/internal/cart"
	"github.com/vborodin/storefront/internal/catalog"
	"github.com/vborodin/storefront/internal/checkout"
	"github.com/vborodin/storefront/internal/domain"
	"github.com/vborodin/storefront/internal/repository"
)

type catalogStub struct {
	products map[int64]*domain.Product
	page     *catalog.Page
}

func (c *catalogStub) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return nil, catalog.ErrProductNotFound
}

func (c *catalogStub) ListProducts(context.Context, catalog.Query) (*catalog.Page, error) {
	return c.page, nil
}

func testRouter(t *testing.T) (chi.Router, *cart.Store) {
	router, store, _ := testRouterWithSubmitter(t, &stubSubmitter{})
	return router, store
}

func testRouterWithSubmitter(t *testing.T, submitter checkout.OrderSubmitter) (chi.Router, *cart.Store, *checkout.Flow) {
	t.Helper()

	store := cart.NewStore(context.Background(), repository.NewMemoryRepository())
	stub := &catalogStub{
		products: map[int64]*domain.Product{
			1: {ID: 1, Name: "Walnut desk", Price: decimal.RequireFromString("50.00"), DiscountPercent: 20, Stock: 10},
			2: {ID: 2, Name: "Desk lamp", Price: decimal.RequireFromString("34.50"), Stock: 2},
		},
		page: &catalog.Page{Page: 1, TotalPages: 1, TotalCount: 2},
	}
	flow := checkout.NewFlow(store, submitter)

	r := chi.NewRouter()
	AddRoutes(r, NewCartHandler(store, stub), NewCheckoutHandler(flow), NewProductHandler(stub))
	return r, store, flow
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAddItem_CreatesLine(t *testing.T) {
	router, store := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 1, Quantity: 2})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(2), store.QuantityOf(1))

	var view CartViewDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "50.00", view.Lines[0].UnitPrice)
	assert.Equal(t, "40.00", view.Lines[0].EffectiveUnitPrice)
	assert.Equal(t, "80.00", view.Lines[0].LineTotal)
	assert.Equal(t, "80.00", view.Subtotal)
	assert.Equal(t, "10.00", view.Shipping)
	assert.Equal(t, "90.00", view.Total)
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	router, store := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 1})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(1), store.QuantityOf(1))
}

func TestAddItem_UnknownProduct(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 99, Quantity: 1})

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "product_not_found", errResp.Code)
}

func TestAddItem_InsufficientStockSurfaced(t *testing.T) {
	router, store := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 2, Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 2, Quantity: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "insufficient_stock", errResp.Code)
	assert.Equal(t, int64(2), store.QuantityOf(2))
}

func TestUpdateQuantity(t *testing.T) {
	router, store := testRouter(t)
	doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 1, Quantity: 1})

	rec := doJSON(t, router, http.MethodPut, "/cart/items/1", UpdateQuantityRequestDTO{Quantity: 5})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), store.QuantityOf(1))
}

func TestUpdateQuantity_ZeroRejected(t *testing.T) {
	router, store := testRouter(t)
	doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 1, Quantity: 2})

	rec := doJSON(t, router, http.MethodPut, "/cart/items/1", UpdateQuantityRequestDTO{Quantity: 0})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(2), store.QuantityOf(1))
}

func TestRemoveItem_ThenClear(t *testing.T) {
	router, store := testRouter(t)
	doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 1, Quantity: 1})
	doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 2, Quantity: 1})

	rec := doJSON(t, router, http.MethodDelete, "/cart/items/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), store.QuantityOf(1))
	assert.Equal(t, int64(1), store.QuantityOf(2))

	rec = doJSON(t, router, http.MethodDelete, "/cart/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), store.ItemCount())
}

func TestGetCart_EmptyView(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/cart/", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var view CartViewDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Empty(t, view.Lines)
	assert.Equal(t, "0.00", view.Subtotal)
	assert.Equal(t, "0.00", view.Shipping)
}
