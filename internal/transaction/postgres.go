package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores the ledger in PostgreSQL. The wallet balance
// lives on the customers row; adjustments lock that row so concurrent
// postings against one customer serialize.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateAndAdjustBalance inserts the transaction record and moves the wallet
// balance inside one database transaction. Sufficiency for a DEBIT is
// re-checked under the row lock; the advisory pre-check in the processor is
// not trusted here.
func (r *PostgresRepository) CreateAndAdjustBalance(ctx context.Context, customerID string, magnitude int64, typ Type, status Status) (Transaction, error) {
	custID, err := uuid.Parse(customerID)
	if err != nil {
		return Transaction{}, ErrCustomerNotFound
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, storeErr("begin tx", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var balance int64
	if err := tx.QueryRow(ctx, `SELECT wallet_balance FROM customers WHERE id = $1 FOR UPDATE`, custID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrCustomerNotFound
		}
		return Transaction{}, storeErr("lock customer", err)
	}

	signedAmount := magnitude
	if typ == TypeDebit {
		if balance < magnitude {
			return Transaction{}, ErrInsufficientFunds
		}
		signedAmount = -magnitude
	}

	txID := uuid.New()
	now := time.Now().UTC()
	record := Transaction{
		ID:         txID.String(),
		CustomerID: custID.String(),
		Amount:     signedAmount,
		Type:       typ,
		Status:     status,
	}
	if err := tx.QueryRow(ctx, `INSERT INTO transactions (id, customer_id, amount, type, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING created_at, updated_at`,
		txID, custID, signedAmount, string(typ), string(status), now).Scan(&record.CreatedAt, &record.UpdatedAt); err != nil {
		return Transaction{}, storeErr("insert transaction", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE customers SET wallet_balance = wallet_balance + $1, updated_at = $2 WHERE id = $3`,
		signedAmount, now, custID); err != nil {
		return Transaction{}, storeErr("adjust balance", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, storeErr("commit", err)
	}

	return record, nil
}

// ListByCustomer fetches the customer's transactions, newest first.
func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID string) ([]Transaction, error) {
	custID, err := uuid.Parse(customerID)
	if err != nil {
		return []Transaction{}, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, customer_id, amount, type, status, created_at, updated_at
        FROM transactions WHERE customer_id = $1 ORDER BY created_at DESC`, custID)
	if err != nil {
		return nil, storeErr("query transactions", err)
	}
	defer rows.Close()

	transactions := []Transaction{}
	for rows.Next() {
		var (
			t         Transaction
			id        uuid.UUID
			ownerID   uuid.UUID
			typ       string
			status    string
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &ownerID, &t.Amount, &typ, &status, &createdAt, &updatedAt); err != nil {
			return nil, storeErr("scan transaction", err)
		}
		t.ID = id.String()
		t.CustomerID = ownerID.String()
		t.Type = Type(typ)
		t.Status = Status(status)
		t.CreatedAt = createdAt.UTC()
		t.UpdatedAt = updatedAt.UTC()
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate transactions", err)
	}

	return transactions, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrStoreUnavailable)
}
