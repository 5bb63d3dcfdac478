package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matchday-io/matchday/internal/domain/bet"
)

// BetRepository keeps bets and wallets together so SettleBatch can
// mimic the all-or-nothing transaction of the relational store.
type BetRepository struct {
	mu        sync.RWMutex
	rows      map[string]bet.Bet
	balances  map[string]int64
	matchRepo *MatchRepository
}

func NewBetRepository(matchRepo *MatchRepository, bets []bet.Bet) *BetRepository {
	rows := make(map[string]bet.Bet, len(bets))
	for _, item := range bets {
		rows[item.ID] = item
	}
	return &BetRepository{
		rows:      rows,
		balances:  make(map[string]int64),
		matchRepo: matchRepo,
	}
}

func (r *BetRepository) Add(item bet.Bet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[item.ID] = item
}

func (r *BetRepository) Get(id string) (bet.Bet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.rows[id]
	return item, ok
}

func (r *BetRepository) Balance(userID string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.balances[userID]
}

func (r *BetRepository) ListOpenDueBefore(ctx context.Context, now time.Time) ([]bet.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []bet.Bet
	for _, item := range r.rows {
		if item.Status != bet.StatusOpen {
			continue
		}
		kickoff := item.KickoffAt
		if kickoff.IsZero() && r.matchRepo != nil {
			if row, exists, _ := r.matchRepo.GetByTeams(ctx, item.HomeTeam, item.AwayTeam); exists {
				kickoff = row.KickoffAt
			}
		}
		if kickoff.IsZero() || kickoff.After(now) {
			continue
		}
		item.KickoffAt = kickoff
		out = append(out, item)
	}
	return out, nil
}

func (r *BetRepository) SettleBatch(_ context.Context, _ string, settlements []bet.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate the whole batch before touching anything.
	for _, item := range settlements {
		row, ok := r.rows[item.BetID]
		if !ok {
			return fmt.Errorf("settle bet %s: not found", item.BetID)
		}
		if row.Status != bet.StatusOpen {
			return fmt.Errorf("settle bet %s: bet is no longer open", item.BetID)
		}
	}

	for _, item := range settlements {
		row := r.rows[item.BetID]
		row.Status = item.Status
		row.Payout = item.Payout
		r.rows[item.BetID] = row
		if item.Status == bet.StatusWon && item.Payout > 0 {
			r.balances[item.UserID] += item.Payout
		}
	}
	return nil
}
