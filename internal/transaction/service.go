package transaction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/saldo-pay/saldo_pay/internal/idempotency"
)

const persistTimeout = 2 * time.Second

// WalletAccessor reads a customer's current balance. A missing customer
// reports ErrCustomerNotFound; I/O failures report ErrStoreUnavailable.
type WalletAccessor interface {
	WalletBalance(ctx context.Context, customerID string) (int64, error)
}

// Service is the posting engine: it decides whether a request was already
// processed, validates it, checks funds, and records the transaction
// atomically with the balance mutation.
type Service struct {
	repo    Repository
	wallets WalletAccessor
	idem    idempotency.Store
	ttl     time.Duration
	logger  *slog.Logger
}

// NewService wires the posting engine.
func NewService(repo Repository, wallets WalletAccessor, idem idempotency.Store, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, wallets: wallets, idem: idem, ttl: ttl, logger: logger}
}

// PostInput carries a posting request. Amount arrives as the caller sent
// it (a number of cents that may carry a fractional part).
type PostInput struct {
	IdempotencyKey string
	CustomerID     string
	Amount         float64
	Type           string
	Status         string
}

// Response is the payload returned for a successful posting and the value
// persisted under the idempotency key.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    Transaction `json:"data"`
}

// PostResult carries the exact payload bytes so a replayed request can be
// answered byte-identically to the first.
type PostResult struct {
	Payload  []byte
	Replayed bool
}

// Post processes one posting request.
//
// A hit on the idempotency key short-circuits everything: the stored
// payload is returned verbatim with no validation and no ledger access,
// which makes retries safe even when the retried body drifts. On a miss
// the payload is validated, funds are pre-checked for a DEBIT, the
// transaction and balance mutation commit atomically, and the response is
// persisted best-effort under the key.
func (s *Service) Post(ctx context.Context, input PostInput) (PostResult, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" {
		return PostResult{}, fmt.Errorf("%w: Idempotency-Key header is required", ErrInvalidRequest)
	}

	stored, found, err := s.idem.Get(ctx, key)
	if err != nil {
		s.logger.Error("idempotency lookup failed", slog.String("key", key), slog.Any("error", err))
		return PostResult{}, fmt.Errorf("idempotency lookup: %w", ErrStoreUnavailable)
	}
	if found {
		s.logger.Info("idempotency key found, returning stored response", slog.String("key", key))
		return PostResult{Payload: stored, Replayed: true}, nil
	}

	if strings.TrimSpace(input.CustomerID) == "" {
		return PostResult{}, ErrUnauthenticated
	}
	if math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount <= 0 {
		return PostResult{}, fmt.Errorf("%w: amount is required and must be a positive number (in cents)", ErrInvalidRequest)
	}
	typ, ok := ParseType(input.Type)
	if !ok {
		return PostResult{}, fmt.Errorf("%w: type is required and must be either 'CREDIT' or 'DEBIT'", ErrInvalidRequest)
	}
	status, ok := NormalizeStatus(input.Status)
	if !ok {
		status = StatusSuccess
	}

	// fractional cents are discarded, not rounded
	magnitude := int64(math.Trunc(math.Abs(input.Amount)))

	// Advisory pre-check: gives a fast, specific error without touching the
	// write path. The repository re-verifies under its own lock.
	if typ == TypeDebit {
		balance, err := s.wallets.WalletBalance(ctx, input.CustomerID)
		if err != nil {
			return PostResult{}, err
		}
		if balance < magnitude {
			s.logger.Info("insufficient funds",
				slog.String("customer_id", input.CustomerID),
				slog.Int64("balance", balance),
				slog.Int64("required", magnitude))
			return PostResult{}, ErrInsufficientFunds
		}
	}

	created, err := s.repo.CreateAndAdjustBalance(ctx, input.CustomerID, magnitude, typ, status)
	if err != nil {
		return PostResult{}, err
	}
	s.logger.Info("transaction created",
		slog.String("transaction_id", created.ID),
		slog.String("customer_id", created.CustomerID),
		slog.Int64("amount", created.Amount),
		slog.String("type", string(created.Type)))

	payload, err := json.Marshal(Response{
		Status:  "ok",
		Message: "Transaction created successfully",
		Data:    created,
	})
	if err != nil {
		return PostResult{}, fmt.Errorf("encode response: %w", err)
	}

	// The monetary effect is already committed; losing the idempotency
	// record only risks a future duplicate-detection miss, so a failure
	// here is logged and swallowed.
	persistCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.idem.Set(persistCtx, key, payload, s.ttl); err != nil {
		s.logger.Error("failed to persist idempotency record", slog.String("key", key), slog.Any("error", err))
	}

	return PostResult{Payload: payload}, nil
}

// ListByCustomer returns the customer's transactions newest first,
// signalling ErrNoTransactions when the ledger holds none.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]Transaction, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrUnauthenticated
	}
	transactions, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, ErrNoTransactions
	}
	return transactions, nil
}
