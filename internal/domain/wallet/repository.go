package wallet

import "context"

// Repository exposes wallet reads. Settlement credits are applied by
// the bet repository inside its settlement transaction.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (Wallet, bool, error)
}
