package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vborodin/storefront/internal/cart"
	"github.com/vborodin/storefront/internal/catalog"
	"github.com/vborodin/storefront/internal/domain"
	"github.com/vborodin/storefront/internal/pricing"
)

type CartHandler struct {
	store   *cart.Store
	catalog catalog.Client
}

func NewCartHandler(store *cart.Store, catalogClient catalog.Client) *CartHandler {
	return &CartHandler{
		store:   store,
		catalog: catalogClient,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int64 `json:"quantity"`
}

type CartLineDTO struct {
	ProductID          int64  `json:"product_id"`
	Name               string `json:"name"`
	ImageURL           string `json:"image_url,omitempty"`
	UnitPrice          string `json:"unit_price"`
	EffectiveUnitPrice string `json:"effective_unit_price"`
	DiscountPercent    int64  `json:"discount_percent"`
	Quantity           int64  `json:"quantity"`
	LineTotal          string `json:"line_total"`
}

type CartViewDTO struct {
	Lines     []CartLineDTO `json:"lines"`
	ItemCount int64         `json:"item_count"`
	Subtotal  string        `json:"subtotal"`
	Shipping  string        `json:"shipping"`
	Total     string        `json:"total"`
}

func cartView(lines []domain.CartLine) CartViewDTO {
	view := CartViewDTO{Lines: make([]CartLineDTO, 0, len(lines))}

	var count int64
	for _, line := range lines {
		count += line.Quantity
		view.Lines = append(view.Lines, CartLineDTO{
			ProductID:          line.ProductID,
			Name:               line.Name,
			ImageURL:           line.ImageURL,
			UnitPrice:          pricing.Display(line.UnitPrice),
			EffectiveUnitPrice: pricing.Display(pricing.EffectiveUnitPrice(line.UnitPrice, line.DiscountPercent)),
			DiscountPercent:    line.DiscountPercent,
			Quantity:           line.Quantity,
			LineTotal:          pricing.Display(pricing.LineTotal(line)),
		})
	}

	subtotal := pricing.Subtotal(lines)
	view.ItemCount = count
	view.Subtotal = pricing.Display(subtotal)
	view.Shipping = pricing.Display(pricing.ShippingCost(subtotal))
	view.Total = pricing.Display(pricing.OrderTotal(lines))
	return view
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, cartView(h.store.Lines()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "no such product")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}

	if err := h.store.AddItem(r.Context(), *product, req.Quantity); err != nil {
		respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cartView(h.store.Lines()))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.store.SetQuantity(r.Context(), productID, req.Quantity); err != nil {
		respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartView(h.store.Lines()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	if err := h.store.RemoveItem(r.Context(), productID); err != nil {
		respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartView(h.store.Lines()))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		respondCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartView(h.store.Lines()))
}

func respondCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		respondError(w, http.StatusConflict, "out_of_stock", err.Error())
	case errors.Is(err, cart.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
