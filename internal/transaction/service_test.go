package transaction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/saldo-pay/saldo_pay/internal/logging"
)

// fakeStore is an in-memory idempotency store with switchable failure modes.
type fakeStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	gets    int
	sets    int
	getErr  error
	setErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string][]byte)}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

// walletFake implements WalletAccessor and WalletStore over a balance map.
type walletFake struct {
	mu       sync.Mutex
	balances map[string]int64
}

func newWalletFake() *walletFake {
	return &walletFake{balances: make(map[string]int64)}
}

func (w *walletFake) seed(customerID string, balance int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[customerID] = balance
}

func (w *walletFake) balance(customerID string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[customerID]
}

func (w *walletFake) WalletBalance(_ context.Context, customerID string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	balance, ok := w.balances[customerID]
	if !ok {
		return 0, ErrCustomerNotFound
	}
	return balance, nil
}

func (w *walletFake) AdjustWalletBalance(_ context.Context, customerID string, delta int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.balances[customerID]; !ok {
		return ErrCustomerNotFound
	}
	w.balances[customerID] += delta
	return nil
}

func newTestService() (*Service, *walletFake, *fakeStore) {
	wallets := newWalletFake()
	store := newFakeStore()
	repo := NewMemoryRepository(wallets)
	svc := NewService(repo, wallets, store, time.Hour, logging.Discard())
	return svc, wallets, store
}

func TestPostCreditIncreasesBalance(t *testing.T) {
	svc, wallets, _ := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 0)

	result, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-credit",
		CustomerID:     custID,
		Amount:         5000,
		Type:           "CREDIT",
	})
	if err != nil {
		t.Fatalf("post credit: %v", err)
	}
	if result.Replayed {
		t.Fatal("fresh posting reported as replayed")
	}

	var resp Response
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected status ok, got %q", resp.Status)
	}
	if resp.Data.Type != TypeCredit || resp.Data.Amount != 5000 {
		t.Fatalf("unexpected transaction: type=%s amount=%d", resp.Data.Type, resp.Data.Amount)
	}
	if resp.Data.Status != StatusSuccess {
		t.Fatalf("expected default status SUCCESS, got %s", resp.Data.Status)
	}
	if got := wallets.balance(custID); got != 5000 {
		t.Fatalf("expected balance 5000, got %d", got)
	}
}

func TestPostDebitInsufficientFunds(t *testing.T) {
	svc, wallets, _ := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 5000)

	_, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-over",
		CustomerID:     custID,
		Amount:         6000,
		Type:           "DEBIT",
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := wallets.balance(custID); got != 5000 {
		t.Fatalf("balance changed on rejected debit: %d", got)
	}
}

func TestPostDebitStoresNegativeAmount(t *testing.T) {
	svc, wallets, _ := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 5000)

	result, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-debit",
		CustomerID:     custID,
		Amount:         2000,
		Type:           "debit", // case-insensitive
	})
	if err != nil {
		t.Fatalf("post debit: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if resp.Data.Amount != -2000 {
		t.Fatalf("expected stored amount -2000, got %d", resp.Data.Amount)
	}
	if got := wallets.balance(custID); got != 3000 {
		t.Fatalf("expected balance 3000, got %d", got)
	}
}

func TestPostMissingIdempotencyKey(t *testing.T) {
	svc, _, store := newTestService()

	_, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "   ",
		CustomerID:     uuid.NewString(),
		Amount:         100,
		Type:           "CREDIT",
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if store.gets != 0 || store.sets != 0 {
		t.Fatalf("store accessed despite missing key: gets=%d sets=%d", store.gets, store.sets)
	}
}

func TestPostReplayReturnsStoredPayloadVerbatim(t *testing.T) {
	svc, wallets, _ := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 0)

	first, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-replay",
		CustomerID:     custID,
		Amount:         1000,
		Type:           "CREDIT",
	})
	if err != nil {
		t.Fatalf("first post: %v", err)
	}

	// Retry with a drifted body: different customer, amount, even an
	// invalid type. The stored payload must come back untouched.
	second, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-replay",
		CustomerID:     "someone-else",
		Amount:         999999,
		Type:           "bogus",
	})
	if err != nil {
		t.Fatalf("replayed post: %v", err)
	}
	if !second.Replayed {
		t.Fatal("expected replay")
	}
	if !bytes.Equal(first.Payload, second.Payload) {
		t.Fatalf("payload drift:\nfirst:  %s\nsecond: %s", first.Payload, second.Payload)
	}
	if got := wallets.balance(custID); got != 1000 {
		t.Fatalf("replay touched the ledger, balance %d", got)
	}
}

func TestPostValidation(t *testing.T) {
	cases := []struct {
		name  string
		input PostInput
		want  error
	}{
		{"blank customer", PostInput{IdempotencyKey: "k", CustomerID: " ", Amount: 100, Type: "CREDIT"}, ErrUnauthenticated},
		{"zero amount", PostInput{IdempotencyKey: "k", CustomerID: "c", Amount: 0, Type: "CREDIT"}, ErrInvalidRequest},
		{"negative amount", PostInput{IdempotencyKey: "k", CustomerID: "c", Amount: -5, Type: "CREDIT"}, ErrInvalidRequest},
		{"unknown type", PostInput{IdempotencyKey: "k", CustomerID: "c", Amount: 100, Type: "TRANSFER"}, ErrInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService()
			if _, err := svc.Post(context.Background(), tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPostTruncatesFractionalCents(t *testing.T) {
	svc, wallets, _ := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 0)

	result, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-frac",
		CustomerID:     custID,
		Amount:         100.9,
		Type:           "CREDIT",
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	var resp Response
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if resp.Data.Amount != 100 {
		t.Fatalf("expected truncated amount 100, got %d", resp.Data.Amount)
	}
}

func TestPostUnknownStatusFallsBackToDefault(t *testing.T) {
	svc, wallets, _ := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 0)

	result, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-status",
		CustomerID:     custID,
		Amount:         100,
		Type:           "CREDIT",
		Status:         "PENDING-ish",
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if resp.Data.Status != StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", resp.Data.Status)
	}
}

func TestPostExplicitFailedStatus(t *testing.T) {
	svc, wallets, _ := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 0)

	result, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-failed",
		CustomerID:     custID,
		Amount:         100,
		Type:           "CREDIT",
		Status:         "failed",
	})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if resp.Data.Status != StatusFailed {
		t.Fatalf("expected FAILED, got %s", resp.Data.Status)
	}
}

func TestPostUnknownCustomerDebit(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-missing",
		CustomerID:     uuid.NewString(),
		Amount:         100,
		Type:           "DEBIT",
	})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestPostLookupFailurePropagates(t *testing.T) {
	svc, wallets, store := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 0)
	store.getErr = errors.New("connection refused")

	_, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-down",
		CustomerID:     custID,
		Amount:         100,
		Type:           "CREDIT",
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if got := wallets.balance(custID); got != 0 {
		t.Fatalf("ledger touched despite lookup failure, balance %d", got)
	}
}

func TestPostPersistFailureIsSwallowed(t *testing.T) {
	svc, wallets, store := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 0)
	store.setErr = errors.New("connection refused")

	result, err := svc.Post(context.Background(), PostInput{
		IdempotencyKey: "key-set-down",
		CustomerID:     custID,
		Amount:         250,
		Type:           "CREDIT",
	})
	if err != nil {
		t.Fatalf("posting must survive a failed idempotency write: %v", err)
	}
	if len(result.Payload) == 0 {
		t.Fatal("missing payload")
	}
	if got := wallets.balance(custID); got != 250 {
		t.Fatalf("expected balance 250, got %d", got)
	}
}

func TestListByCustomerOrderAndRoundTrip(t *testing.T) {
	svc, wallets, _ := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 0)

	amounts := []float64{100, 200, 300}
	for i, amt := range amounts {
		if _, err := svc.Post(context.Background(), PostInput{
			IdempotencyKey: fmt.Sprintf("key-list-%d", i),
			CustomerID:     custID,
			Amount:         amt,
			Type:           "CREDIT",
		}); err != nil {
			t.Fatalf("post %d: %v", i, err)
		}
	}

	transactions, err := svc.ListByCustomer(context.Background(), custID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(transactions))
	}
	// newest first
	if transactions[0].Amount != 300 || transactions[2].Amount != 100 {
		t.Fatalf("unexpected order: %d, %d, %d", transactions[0].Amount, transactions[1].Amount, transactions[2].Amount)
	}
}

func TestListByCustomerEmpty(t *testing.T) {
	svc, wallets, _ := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 0)

	if _, err := svc.ListByCustomer(context.Background(), custID); !errors.Is(err, ErrNoTransactions) {
		t.Fatalf("expected ErrNoTransactions, got %v", err)
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	svc, wallets, _ := newTestService()
	custID := uuid.NewString()
	wallets.seed(custID, 1000)

	// 20 workers each try to debit 100 from a balance of 1000; exactly
	// ten can succeed no matter how the pre-checks interleave.
	const workers = 20
	var wg sync.WaitGroup
	var succeeded int64
	var mu sync.Mutex
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Post(context.Background(), PostInput{
				IdempotencyKey: fmt.Sprintf("key-conc-%d", i),
				CustomerID:     custID,
				Amount:         100,
				Type:           "DEBIT",
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("worker %d: unexpected error %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("expected 10 successful debits, got %d", succeeded)
	}
	if got := wallets.balance(custID); got != 0 {
		t.Fatalf("expected final balance 0, got %d", got)
	}
}
