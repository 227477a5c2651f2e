package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product's representation within a cart. Price, discount and
// stock are snapshots taken when the line was created; they are not re-fetched
// on later mutations.
type CartLine struct {
	ProductID       int64           `json:"product_id"`
	Name            string          `json:"name"`
	ImageURL        string          `json:"image_url,omitempty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent int64           `json:"discount_percent"`
	Quantity        int64           `json:"quantity"`
	Stock           int64           `json:"stock"`
	AddedAt         time.Time       `json:"added_at"`
}

// Cart holds the ordered collection of lines. Insertion order is preserved for
// display. Item count and subtotal are always derived, never stored.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Copy returns a deep copy so callers cannot mutate the stored cart.
func (c *Cart) Copy() *Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return &Cart{
		Lines:     lines,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
