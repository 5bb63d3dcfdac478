package wallet

import "time"

// Wallet is a user's spendable balance.
type Wallet struct {
	UserID    string
	Balance   int64
	UpdatedAt time.Time
}
