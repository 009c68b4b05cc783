package customer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service exposes customer lifecycle operations. Wallet balances are only
// read here; mutation belongs to the transaction engine.
type Service struct {
	repo Repository
}

// NewService builds a customer service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to create a customer.
type CreateInput struct {
	Name          string
	Email         string
	WalletBalance int64
	PasswordHash  []byte
}

// Create provisions a customer with an optional opening balance.
func (s *Service) Create(ctx context.Context, input CreateInput) (Customer, error) {
	now := time.Now().UTC()
	cust := Customer{
		ID:            uuid.NewString(),
		Name:          input.Name,
		Email:         input.Email,
		WalletBalance: input.WalletBalance,
		PasswordHash:  input.PasswordHash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, cust); err != nil {
		return Customer{}, err
	}
	return cust, nil
}

// Get retrieves a customer by id.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	return s.repo.Get(ctx, id)
}
