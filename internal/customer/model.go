package customer

import "time"

// Customer holds a wallet balance in minor currency units. The balance is
// mutated only by the transaction engine's atomic posting path.
type Customer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	WalletBalance int64     `json:"wallet_balance"`
	PasswordHash  []byte    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
