package transaction

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidRequest indicates a malformed posting request (missing
	// idempotency key, non-positive amount, unknown type).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthenticated indicates the request carried no customer identity.
	ErrUnauthenticated = errors.New("customer id is required")

	// ErrCustomerNotFound indicates the referenced customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrInsufficientFunds occurs when a DEBIT exceeds the wallet balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrStoreUnavailable wraps transient backing-store failures; callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNoTransactions indicates a customer has no ledger history.
	ErrNoTransactions = errors.New("no transactions found")
)

// Type enumerates the direction of a posting.
type Type string

const (
	TypeCredit Type = "CREDIT"
	TypeDebit  Type = "DEBIT"
)

// Status enumerates posting outcomes recorded on the ledger.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Transaction is one immutable ledger entry. Amount is signed: positive
// for CREDIT, negative for DEBIT, always in minor currency units.
type Transaction struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Amount     int64     `json:"amount"`
	Type       Type      `json:"type"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ParseType matches CREDIT/DEBIT case-insensitively.
func ParseType(raw string) (Type, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(TypeCredit):
		return TypeCredit, true
	case string(TypeDebit):
		return TypeDebit, true
	default:
		return "", false
	}
}

// NormalizeStatus maps a caller-supplied status onto the ledger enum.
// Unrecognized values yield ok=false and the repository default applies;
// this is deliberately permissive rather than a validation error.
func NormalizeStatus(raw string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(StatusSuccess):
		return StatusSuccess, true
	case string(StatusFailed):
		return StatusFailed, true
	default:
		return "", false
	}
}
