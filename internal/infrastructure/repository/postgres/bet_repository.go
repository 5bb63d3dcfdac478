package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/matchday-io/matchday/internal/domain/bet"
	qb "github.com/matchday-io/matchday/internal/platform/querybuilder"
)

type BetRepository struct {
	db *sqlx.DB
}

type betTableModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	HomeTeam  string    `db:"home_team"`
	AwayTeam  string    `db:"away_team"`
	Market    string    `db:"market"`
	Selection string    `db:"selection"`
	Stake     int64     `db:"stake"`
	Odds      float64   `db:"odds"`
	Status    string    `db:"status"`
	Payout    int64     `db:"payout"`
	PlacedAt  time.Time `db:"placed_at"`
	KickoffAt time.Time `db:"kickoff_at"`
}

func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

// listOpenDueQuery joins each open bet to its most recent canonical
// match row so the sweep can gate on kickoff without a second lookup.
const listOpenDueQuery = `
SELECT b.id, b.user_id, b.home_team, b.away_team, b.market, b.selection,
       b.stake, b.odds, b.status, b.payout, b.placed_at,
       m.kickoff_at
FROM bets b
JOIN LATERAL (
    SELECT kickoff_at
    FROM matches
    WHERE home_team = b.home_team AND away_team = b.away_team
    ORDER BY id DESC
    LIMIT 1
) m ON true
WHERE b.status = $1 AND m.kickoff_at <= $2
ORDER BY b.placed_at, b.id`

func (r *BetRepository) ListOpenDueBefore(ctx context.Context, now time.Time) ([]bet.Bet, error) {
	var rows []betTableModel
	if err := r.db.SelectContext(ctx, &rows, listOpenDueQuery, bet.StatusOpen, now); err != nil {
		return nil, fmt.Errorf("list open due bets: %w", err)
	}

	out := make([]bet.Bet, 0, len(rows))
	for _, row := range rows {
		out = append(out, bet.Bet{
			ID:        row.ID,
			UserID:    row.UserID,
			HomeTeam:  row.HomeTeam,
			AwayTeam:  row.AwayTeam,
			Market:    row.Market,
			Selection: row.Selection,
			Stake:     row.Stake,
			Odds:      row.Odds,
			Status:    row.Status,
			Payout:    row.Payout,
			PlacedAt:  row.PlacedAt,
			KickoffAt: row.KickoffAt,
		})
	}

	return out, nil
}

// SettleBatch applies every settlement and its wallet credit in one
// transaction. Any failure rolls the whole batch back, leaving every
// touched bet open for the next sweep.
func (r *BetRepository) SettleBatch(ctx context.Context, batchRef string, settlements []bet.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settlement batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, item := range settlements {
		query, args, err := qb.Update("bets").
			Set("status", item.Status).
			Set("payout", item.Payout).
			Set("settlement_ref", batchRef).
			Set("settled_at", now).
			Where(
				qb.Eq("id", item.BetID),
				qb.Eq("status", bet.StatusOpen),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build settle bet query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("settle bet %s: %w", item.BetID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("settle bet %s rows affected: %w", item.BetID, err)
		}
		if affected == 0 {
			return fmt.Errorf("settle bet %s: bet is no longer open", item.BetID)
		}

		if item.Status == bet.StatusWon && item.Payout > 0 {
			creditQuery, creditArgs, err := qb.InsertInto("wallets").
				Columns("user_id", "balance", "updated_at").
				Values(item.UserID, item.Payout, now).
				Suffix("ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at").
				ToSQL()
			if err != nil {
				return fmt.Errorf("build wallet credit query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, creditQuery, creditArgs...); err != nil {
				return fmt.Errorf("credit wallet for bet %s: %w", item.BetID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settlement batch: %w", err)
	}
	return nil
}
