package memory

import (
	"context"
	"time"

	"github.com/matchday-io/matchday/internal/domain/wallet"
)

// WalletRepository reads balances maintained by the bet repository's
// settlement batches.
type WalletRepository struct {
	bets *BetRepository
}

func NewWalletRepository(bets *BetRepository) *WalletRepository {
	return &WalletRepository{bets: bets}
}

func (r *WalletRepository) GetByUser(_ context.Context, userID string) (wallet.Wallet, bool, error) {
	balance := r.bets.Balance(userID)
	return wallet.Wallet{
		UserID:    userID,
		Balance:   balance,
		UpdatedAt: time.Now().UTC(),
	}, true, nil
}
