package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/saldo-pay/saldo_pay/internal/customer"
)

const sessionPrefix = "session:v1:"

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionExpired indicates a missing or expired session token.
	ErrSessionExpired = errors.New("session expired")
)

// Service manages registration and Redis-backed login sessions.
type Service struct {
	customers *customer.Service
	repo      customer.Repository
	sessions  *redis.Client
	ttl       time.Duration
}

// NewService builds an auth service. sessions may be nil in dev mode, in
// which case Verify accepts any token.
func NewService(customers *customer.Service, repo customer.Repository, sessions *redis.Client, ttl time.Duration) *Service {
	return &Service{customers: customers, repo: repo, sessions: sessions, ttl: ttl}
}

// Credentials carries a registration or login request.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// Register creates a customer with a hashed password and a zero balance.
func (s *Service) Register(ctx context.Context, creds Credentials) (customer.Customer, error) {
	if len(creds.Password) < 8 {
		return customer.Customer{}, errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return customer.Customer{}, err
	}
	return s.customers.Create(ctx, customer.CreateInput{
		Name:         creds.Name,
		Email:        creds.Email,
		PasswordHash: hash,
	})
}

// Session is an opaque bearer token bound to a customer.
type Session struct {
	Token      string `json:"token"`
	CustomerID string `json:"customer_id"`
	ExpiresIn  int64  `json:"expires_in"`
}

// Login verifies credentials and mints a session token.
func (s *Service) Login(ctx context.Context, creds Credentials) (Session, error) {
	cust, err := s.repo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword(cust.PasswordHash, []byte(creds.Password)) != nil {
		return Session{}, ErrInvalidCredentials
	}

	token := uuid.NewString()
	if s.sessions != nil {
		if err := s.sessions.Set(ctx, sessionPrefix+token, cust.ID, s.ttl).Err(); err != nil {
			return Session{}, fmt.Errorf("store session: %w", err)
		}
	}
	return Session{Token: token, CustomerID: cust.ID, ExpiresIn: int64(s.ttl.Seconds())}, nil
}

// Verify resolves a session token to its customer id.
func (s *Service) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionExpired
	}
	if s.sessions == nil {
		return "", nil // dev mode: no session authority
	}
	customerID, err := s.sessions.Get(ctx, sessionPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionExpired
		}
		return "", fmt.Errorf("read session: %w", err)
	}
	return customerID, nil
}

// Logout discards the session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.sessions == nil || token == "" {
		return nil
	}
	return s.sessions.Del(ctx, sessionPrefix+token).Err()
}
