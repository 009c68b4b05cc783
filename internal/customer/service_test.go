package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestServiceCreateAndGet(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	cust, err := svc.Create(ctx, CreateInput{Name: "Ada", Email: "ada@example.com", WalletBalance: 2_500})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cust.ID == "" {
		t.Fatal("missing id")
	}
	if cust.WalletBalance != 2_500 {
		t.Fatalf("expected opening balance 2500, got %d", cust.WalletBalance)
	}

	fetched, err := svc.Get(ctx, cust.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Email != "ada@example.com" || fetched.Name != "Ada" {
		t.Fatalf("unexpected customer: %+v", fetched)
	}
}

func TestServiceGetUnknown(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.Get(context.Background(), uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositoryDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Other", Email: "ada@example.com"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestMemoryRepositoryBalanceOps(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	cust, err := svc.Create(ctx, CreateInput{Name: "Ada", Email: "ada@example.com", WalletBalance: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.AdjustWalletBalance(ctx, cust.ID, -40); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	balance, err := repo.WalletBalance(ctx, cust.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 60 {
		t.Fatalf("expected balance 60, got %d", balance)
	}

	if _, err := repo.WalletBalance(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
