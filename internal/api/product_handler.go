package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vborodin/storefront/internal/catalog"
)

type ProductHandler struct {
	catalog catalog.Client
}

func NewProductHandler(catalogClient catalog.Client) *ProductHandler {
	return &ProductHandler{catalog: catalogClient}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query, err := parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	page, err := h.catalog.ListProducts(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be positive")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "no such product")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func parseQuery(r *http.Request) (catalog.Query, error) {
	values := r.URL.Query()
	query := catalog.Query{
		Category: values.Get("category"),
		SortBy:   values.Get("sort_by"),
		SortDir:  values.Get("sort_dir"),
	}

	if raw := values.Get("min_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return query, errors.New("min_price must be a decimal number")
		}
		query.MinPrice = &price
	}
	if raw := values.Get("max_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return query, errors.New("max_price must be a decimal number")
		}
		query.MaxPrice = &price
	}
	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return query, errors.New("page must be a positive integer")
		}
		query.Page = page
	}
	if raw := values.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return query, errors.New("page_size must be a positive integer")
		}
		query.PageSize = size
	}

	return query, nil
}
