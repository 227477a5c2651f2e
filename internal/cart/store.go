package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vborodin/storefront/internal/domain"
	"github.com/vborodin/storefront/internal/pricing"
	"github.com/vborodin/storefront/internal/repository"
)

// Store owns the session cart: one line per product, quantity bounded by the
// stock known when the line was created. All mutations go through the public
// operations and persist the updated cart before returning; a persistence
// failure degrades to in-memory operation with a logged warning instead of
// blocking the user.
type Store struct {
	mu   sync.Mutex
	repo repository.CartRepository
	cart *domain.Cart
}

// NewStore loads the persisted cart once. A missing cart starts empty; a
// broken persistence layer is logged and also starts empty.
func NewStore(ctx context.Context, repo repository.CartRepository) *Store {
	s := &Store{repo: repo}

	cart, err := repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrCartNotFound) {
			log.Printf("cart load error, starting empty: %v", err)
		}
		now := time.Now()
		cart = &domain.Cart{CreatedAt: now, UpdatedAt: now}
	}

	s.cart = cart
	return s
}

// newLine validates and narrows an incoming catalog record into a cart line.
// This is the single construction point, so loosely-shaped caller data never
// enters the cart.
func newLine(product domain.Product, quantity int64) domain.CartLine {
	return domain.CartLine{
		ProductID:       product.ID,
		Name:            product.Name,
		ImageURL:        product.ImageURL,
		UnitPrice:       product.Price,
		DiscountPercent: product.DiscountPercent,
		Quantity:        quantity,
		Stock:           product.Stock,
		AddedAt:         time.Now(),
	}
}

// AddItem adds the product to the cart, merging into an existing line when one
// is present. A merge that would exceed the stock known at add-time fails with
// ErrInsufficientStock and leaves the line unchanged; adding a product whose
// stock is zero fails with ErrOutOfStock. A new line's quantity is capped at
// the product's stock.
func (s *Store) AddItem(ctx context.Context, product domain.Product, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.lineIndex(product.ID); ok {
		line := &s.cart.Lines[idx]
		newQuantity := line.Quantity + quantity
		if newQuantity > line.Stock {
			return ErrInsufficientStock
		}
		line.Quantity = newQuantity
	} else {
		if product.Stock == 0 {
			return ErrOutOfStock
		}
		if quantity > product.Stock {
			quantity = product.Stock
		}
		s.cart.Lines = append(s.cart.Lines, newLine(product, quantity))
	}

	s.persist(ctx)
	return nil
}

// RemoveItem deletes the line if present. Removing an absent product is a
// no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.lineIndex(productID)
	if !ok {
		return nil
	}

	s.cart.Lines = append(s.cart.Lines[:idx], s.cart.Lines[idx+1:]...)
	s.persist(ctx)
	return nil
}

// SetQuantity sets an existing line to an exact quantity. Quantities below 1
// are rejected; removal is always an explicit RemoveItem, never a side effect
// of a quantity field. Quantities above the line's stock are rejected rather
// than silently clamped so the caller can inform the user.
func (s *Store) SetQuantity(ctx context.Context, productID, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.lineIndex(productID)
	if !ok {
		return ErrItemNotFound
	}

	line := &s.cart.Lines[idx]
	if quantity > line.Stock {
		return ErrInsufficientStock
	}

	line.Quantity = quantity
	s.persist(ctx)
	return nil
}

// Clear empties the cart. Used after successful checkout and as an explicit
// user action.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Lines = nil
	s.persist(ctx)
	return nil
}

// ItemCount is the sum of all line quantities.
func (s *Store) ItemCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, line := range s.cart.Lines {
		count += line.Quantity
	}
	return count
}

// Subtotal is derived from the raw price/discount/quantity triples on every
// call; discounted values are never stored or re-discounted.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Subtotal(s.cart.Lines)
}

// QuantityOf returns the quantity for the product, or 0 when absent.
func (s *Store) QuantityOf(productID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.lineIndex(productID); ok {
		return s.cart.Lines[idx].Quantity
	}
	return 0
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.CartLine, len(s.cart.Lines))
	copy(lines, s.cart.Lines)
	return lines
}

// Snapshot returns a deep copy of the whole cart.
func (s *Store) Snapshot() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Copy()
}

func (s *Store) lineIndex(productID int64) (int, bool) {
	for i := range s.cart.Lines {
		if s.cart.Lines[i].ProductID == productID {
			return i, true
		}
	}
	return 0, false
}

// persist writes the cart after a mutation. Callers hold the lock.
func (s *Store) persist(ctx context.Context) {
	s.cart.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, s.cart); err != nil {
		log.Printf("cart save error, continuing in memory: %v", err)
	}
}
