package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vborodin/storefront/internal/checkout"
	"github.com/vborodin/storefront/internal/domain"
)

type CheckoutHandler struct {
	flow *checkout.Flow
}

func NewCheckoutHandler(flow *checkout.Flow) *CheckoutHandler {
	return &CheckoutHandler{flow: flow}
}

type ShippingRequestDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type PaymentRequestDTO struct {
	Method string `json:"method"`
}

type CheckoutStateDTO struct {
	Step      string                  `json:"step"`
	Address   *domain.ShippingAddress `json:"address,omitempty"`
	Method    string                  `json:"method,omitempty"`
	LastError string                  `json:"last_error,omitempty"`
	OrderID   string                  `json:"order_id,omitempty"`
}

type SubmitResponseDTO struct {
	OrderID string `json:"order_id"`
}

func (h *CheckoutHandler) state() CheckoutStateDTO {
	dto := CheckoutStateDTO{
		Step:      h.flow.Step().String(),
		Method:    h.flow.Method().String(),
		LastError: h.flow.LastError(),
		OrderID:   h.flow.OrderID(),
	}
	if addr := h.flow.Address(); addr != (domain.ShippingAddress{}) {
		dto.Address = &addr
	}
	return dto
}

func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Begin(); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.ProceedToShipping(); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	var req ShippingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	address := domain.ShippingAddress{
		Street:  req.Street,
		City:    req.City,
		ZipCode: req.ZipCode,
		Country: req.Country,
	}
	if err := h.flow.SubmitShipping(address); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.flow.SelectPayment(domain.PaymentMethod(req.Method)); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Back(); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	conf, err := h.flow.Submit(r.Context())
	if err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, SubmitResponseDTO{OrderID: conf.OrderID})
}

func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Reset(); err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.state())
}

func respondCheckoutError(w http.ResponseWriter, err error) {
	var subErr *checkout.SubmissionError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, checkout.ErrSubmitInFlight):
		respondError(w, http.StatusConflict, "submit_in_flight", err.Error())
	case errors.Is(err, checkout.ErrIncompleteAddress):
		respondError(w, http.StatusBadRequest, "incomplete_address", err.Error())
	case errors.Is(err, checkout.ErrPaymentMethodRequired):
		respondError(w, http.StatusBadRequest, "payment_method_required", err.Error())
	case errors.As(err, &subErr):
		code := "order_submission_failed"
		if subErr.Retryable {
			code = "order_submission_failed_retryable"
		}
		respondError(w, http.StatusBadGateway, code, subErr.Reason)
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
