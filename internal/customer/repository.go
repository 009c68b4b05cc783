package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saldo-pay/saldo_pay/internal/transaction"
)

// ErrNotFound reports a missing customer. It is the transaction engine's
// sentinel so the posting pre-check recognizes it across packages.
var ErrNotFound = transaction.ErrCustomerNotFound

// ErrEmailTaken reports a duplicate registration email.
var ErrEmailTaken = errors.New("email already registered")

// Repository persists customers. WalletBalance satisfies the engine's
// WalletAccessor contract.
type Repository interface {
	Create(ctx context.Context, cust Customer) error
	Get(ctx context.Context, id string) (Customer, error)
	FindByEmail(ctx context.Context, email string) (Customer, error)
	WalletBalance(ctx context.Context, customerID string) (int64, error)
}

// PostgresRepository stores customers in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a customer record.
func (r *PostgresRepository) Create(ctx context.Context, cust Customer) error {
	custID, err := uuid.Parse(cust.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO customers (id, name, email, wallet_balance, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		custID, cust.Name, cust.Email, cust.WalletBalance, cust.PasswordHash, cust.CreatedAt.UTC(), cust.UpdatedAt.UTC())
	return err
}

// Get fetches a customer by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Customer, error) {
	custID, err := uuid.Parse(id)
	if err != nil {
		return Customer{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, email, wallet_balance, password_hash, created_at, updated_at
        FROM customers WHERE id = $1`, custID)
	return scanCustomer(row)
}

// FindByEmail fetches a customer by registration email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, email, wallet_balance, password_hash, created_at, updated_at
        FROM customers WHERE email = $1`, email)
	return scanCustomer(row)
}

// WalletBalance reads only the balance column.
func (r *PostgresRepository) WalletBalance(ctx context.Context, customerID string) (int64, error) {
	custID, err := uuid.Parse(customerID)
	if err != nil {
		return 0, ErrNotFound
	}
	var balance int64
	if err := r.db.QueryRow(ctx, `SELECT wallet_balance FROM customers WHERE id = $1`, custID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("read wallet balance: %v: %w", err, transaction.ErrStoreUnavailable)
	}
	return balance, nil
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var (
		cust      Customer
		id        uuid.UUID
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &cust.Name, &cust.Email, &cust.WalletBalance, &cust.PasswordHash, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	cust.ID = id.String()
	cust.CreatedAt = createdAt.UTC()
	cust.UpdatedAt = updatedAt.UTC()
	return cust, nil
}
