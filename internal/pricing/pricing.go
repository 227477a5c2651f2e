package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/vborodin/storefront/internal/domain"
)

// Shipping policy. The free-shipping boundary is exclusive: a subtotal of
// exactly FreeShippingThreshold still pays the standard fee.
var (
	FreeShippingThreshold = decimal.NewFromInt(100)
	StandardShippingFee   = decimal.NewFromInt(10)
)

var oneHundred = decimal.NewFromInt(100)

// EffectiveUnitPrice returns the unit price after applying the percentage
// discount. No rounding happens here; totals accumulate at full precision and
// round only at display time.
func EffectiveUnitPrice(unitPrice decimal.Decimal, discountPercent int64) decimal.Decimal {
	if discountPercent == 0 {
		return unitPrice
	}
	multiplier := oneHundred.Sub(decimal.NewFromInt(discountPercent)).Div(oneHundred)
	return unitPrice.Mul(multiplier)
}

// LineTotal is the effective unit price times the line quantity, always
// computed from the raw (unitPrice, discountPercent, quantity) triple.
func LineTotal(line domain.CartLine) decimal.Decimal {
	return EffectiveUnitPrice(line.UnitPrice, line.DiscountPercent).
		Mul(decimal.NewFromInt(line.Quantity))
}

// Subtotal sums the line totals of all lines.
func Subtotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotal(line))
	}
	return total
}

// ShippingCost applies the flat shipping policy: free for an empty cart, free
// above the threshold, otherwise the standard fee.
func ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() {
		return decimal.Zero
	}
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return StandardShippingFee
}

// OrderTotal is the cart subtotal plus shipping.
func OrderTotal(lines []domain.CartLine) decimal.Decimal {
	subtotal := Subtotal(lines)
	return subtotal.Add(ShippingCost(subtotal))
}

// Display rounds a monetary amount to currency precision for presentation.
func Display(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
