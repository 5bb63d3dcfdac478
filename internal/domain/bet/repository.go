package bet

import (
	"context"
	"time"
)

// Settlement is one resolved bet plus the wallet credit it implies.
type Settlement struct {
	BetID  string
	UserID string
	Status string
	Payout int64
}

// Repository exposes bet persistence. SettleBatch must apply every
// settlement and its wallet credit in a single transaction; a failed
// batch leaves all bets open.
type Repository interface {
	ListOpenDueBefore(ctx context.Context, now time.Time) ([]Bet, error)
	SettleBatch(ctx context.Context, batchRef string, settlements []Settlement) error
}
