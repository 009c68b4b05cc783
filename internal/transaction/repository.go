package transaction

import "context"

// Repository persists ledger entries and the wallet balance they adjust.
type Repository interface {
	// CreateAndAdjustBalance inserts a transaction record and applies the
	// balance mutation as a single atomic unit. The magnitude is always
	// positive; the implementation applies the sign from typ. A DEBIT must
	// re-verify sufficiency inside the atomic boundary so the wallet can
	// never be observed negative, regardless of interleaving.
	CreateAndAdjustBalance(ctx context.Context, customerID string, magnitude int64, typ Type, status Status) (Transaction, error)

	// ListByCustomer returns the customer's ledger entries ordered most
	// recent first. No entries is an empty slice, not an error.
	ListByCustomer(ctx context.Context, customerID string) ([]Transaction, error)
}
