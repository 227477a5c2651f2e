package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the enumerated payment choice made during checkout.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPayPal PaymentMethod = "paypal"
	PaymentMethodCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPayPal, PaymentMethodCOD:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

// ShippingAddress holds the free-form address fields collected during the
// shipping step.
type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// Complete reports whether every required field is non-empty.
func (a ShippingAddress) Complete() bool {
	return a.Street != "" && a.City != "" && a.ZipCode != "" && a.Country != ""
}

// OrderLine is one line of the order payload handed to the order-submission
// collaborator. Price fields are copied from the cart line snapshot.
type OrderLine struct {
	ProductID       int64           `json:"product_id"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent int64           `json:"discount_percent"`
}

// OrderRequest is the full order payload captured at submit time. It is fixed
// at the moment submission starts and unaffected by later cart mutations.
type OrderRequest struct {
	Lines           []OrderLine     `json:"lines"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	IdempotencyKey  string          `json:"idempotency_key"`
	CapturedAt      time.Time       `json:"captured_at"`
}

// OrderConfirmation is the success result of an order submission.
type OrderConfirmation struct {
	OrderID string `json:"order_id"`
}
