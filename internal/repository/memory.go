package repository

import (
	"context"
	"sync"

	"github.com/vborodin/storefront/internal/domain"
)

// MemoryRepository keeps the cart in process memory. Used as the default when
// no durable backend is configured, and by tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	cart *domain.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(_ context.Context) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cart == nil {
		return nil, ErrCartNotFound
	}
	return r.cart.Copy(), nil
}

func (r *MemoryRepository) Save(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart = cart.Copy()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart = nil
	return nil
}
