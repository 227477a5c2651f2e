package cart

import "errors"

// Mutation failures are reported as sentinel errors so the caller can decide
// how to surface them; the store never panics on a rejected mutation.
var (
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("insufficient stock for requested quantity")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrItemNotFound      = errors.New("item not found in cart")
)
