package repository

import (
	"context"
	"errors"

	"github.com/vborodin/storefront/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// DefaultNamespace is the fixed key under which the session cart is stored.
const DefaultNamespace = "storefront:cart"

// CartRepository is the persistence collaborator for the cart. It is read once
// when the store is constructed and written after every mutation.
type CartRepository interface {
	Load(ctx context.Context) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context) error
}
