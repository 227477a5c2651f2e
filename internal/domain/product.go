package domain

import "github.com/shopspring/decimal"

// Product is a catalog record as returned by the catalog collaborator.
type Product struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
	Category        string          `json:"category,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent int64           `json:"discount_percent"`
	Stock           int64           `json:"stock"`
}
