package transaction

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WalletStore is the balance surface the in-memory repository needs:
// a read plus a signed adjustment. The Postgres repository does not use
// it because the balance column lives in the same database.
type WalletStore interface {
	WalletBalance(ctx context.Context, customerID string) (int64, error)
	AdjustWalletBalance(ctx context.Context, customerID string, delta int64) error
}

// MemoryRepository is a concurrency-safe in-memory ledger for tests and
// the no-database dev mode. Postings serialize on a single mutex, which
// stands in for the row lock the Postgres repository takes.
type MemoryRepository struct {
	mu           sync.RWMutex
	wallets      WalletStore
	transactions map[string][]Transaction
}

// NewMemoryRepository builds an in-memory ledger over the given wallet store.
func NewMemoryRepository(wallets WalletStore) *MemoryRepository {
	return &MemoryRepository{
		wallets:      wallets,
		transactions: make(map[string][]Transaction),
	}
}

func (r *MemoryRepository) CreateAndAdjustBalance(ctx context.Context, customerID string, magnitude int64, typ Type, status Status) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	balance, err := r.wallets.WalletBalance(ctx, customerID)
	if err != nil {
		return Transaction{}, err
	}

	signedAmount := magnitude
	if typ == TypeDebit {
		if balance < magnitude {
			return Transaction{}, ErrInsufficientFunds
		}
		signedAmount = -magnitude
	}

	if err := r.wallets.AdjustWalletBalance(ctx, customerID, signedAmount); err != nil {
		return Transaction{}, err
	}

	now := time.Now().UTC()
	record := Transaction{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Amount:     signedAmount,
		Type:       typ,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// prepend so the newest entry lists first
	r.transactions[customerID] = append([]Transaction{record}, r.transactions[customerID]...)
	return record, nil
}

func (r *MemoryRepository) ListByCustomer(_ context.Context, customerID string) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.transactions[customerID]
	out := make([]Transaction, len(stored))
	copy(out, stored)
	return out, nil
}
