package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/matchday-io/matchday/internal/domain/wallet"
	qb "github.com/matchday-io/matchday/internal/platform/querybuilder"
)

type WalletRepository struct {
	db *sqlx.DB
}

type walletTableModel struct {
	UserID    string    `db:"user_id"`
	Balance   int64     `db:"balance"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUser(ctx context.Context, userID string) (wallet.Wallet, bool, error) {
	query, args, err := qb.Select("user_id", "balance", "updated_at").
		From("wallets").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return wallet.Wallet{}, false, fmt.Errorf("build get wallet query: %w", err)
	}

	var row walletTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wallet.Wallet{}, false, nil
		}
		return wallet.Wallet{}, false, fmt.Errorf("get wallet: %w", err)
	}

	return wallet.Wallet{
		UserID:    row.UserID,
		Balance:   row.Balance,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}
