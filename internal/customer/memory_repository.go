package customer

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps customers in memory. It also implements the
// transaction engine's WalletStore so the in-memory ledger can adjust
// balances during tests and the no-database dev mode.
type MemoryRepository struct {
	mu        sync.RWMutex
	customers map[string]Customer
	byEmail   map[string]string
}

// NewMemoryRepository builds an empty in-memory customer store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		customers: make(map[string]Customer),
		byEmail:   make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, cust Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[cust.Email]; exists {
		return ErrEmailTaken
	}
	r.customers[cust.ID] = cust
	r.byEmail[cust.Email] = cust.ID
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cust, exists := r.customers[id]
	if !exists {
		return Customer{}, ErrNotFound
	}
	return cust, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, exists := r.byEmail[email]
	if !exists {
		return Customer{}, ErrNotFound
	}
	return r.customers[id], nil
}

func (r *MemoryRepository) WalletBalance(_ context.Context, customerID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cust, exists := r.customers[customerID]
	if !exists {
		return 0, ErrNotFound
	}
	return cust.WalletBalance, nil
}

// AdjustWalletBalance applies a signed delta to the stored balance.
func (r *MemoryRepository) AdjustWalletBalance(_ context.Context, customerID string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cust, exists := r.customers[customerID]
	if !exists {
		return ErrNotFound
	}
	cust.WalletBalance += delta
	cust.UpdatedAt = time.Now().UTC()
	r.customers[customerID] = cust
	return nil
}
