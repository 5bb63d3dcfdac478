package memory

import (
	"context"
	"sync"

	"github.com/matchday-io/matchday/internal/domain/match"
)

type MatchRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []match.Match
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	r := &MatchRepository{nextID: 1}
	for _, item := range matches {
		if item.ID == 0 {
			item.ID = r.nextID
		}
		if item.ID >= r.nextID {
			r.nextID = item.ID + 1
		}
		r.rows = append(r.rows, item)
	}
	return r
}

// Add inserts a row and returns its assigned id.
func (r *MatchRepository) Add(item match.Match) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == 0 {
		item.ID = r.nextID
	}
	if item.ID >= r.nextID {
		r.nextID = item.ID + 1
	}
	r.rows = append(r.rows, item)
	return item.ID
}

func (r *MatchRepository) GetByTeams(_ context.Context, home, away string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found match.Match
		ok    bool
	)
	for _, item := range r.rows {
		if item.HomeTeam == home && item.AwayTeam == away {
			if !ok || item.ID > found.ID {
				found = item
			}
			ok = true
		}
	}
	return found, ok, nil
}

func (r *MatchRepository) ListByTeams(_ context.Context, home, away string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []match.Match
	for _, item := range r.rows {
		if item.HomeTeam == home && item.AwayTeam == away {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MatchRepository) ListAll(_ context.Context) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]match.Match(nil), r.rows...), nil
}

func (r *MatchRepository) ListByStatus(_ context.Context, status string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []match.Match
	for _, item := range r.rows {
		if match.NormalizeStatus(item.Status) == match.NormalizeStatus(status) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MatchRepository) UpdateResult(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.rows {
		if r.rows[idx].ID == item.ID {
			r.rows[idx].Status = item.Status
			r.rows[idx].HomeScore = item.HomeScore
			r.rows[idx].AwayScore = item.AwayScore
			r.rows[idx].FinishedAt = item.FinishedAt
			return nil
		}
	}
	return nil
}

func (r *MatchRepository) UpdateSpecials(_ context.Context, id int64, penaltyAwarded, redCardShown *bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for idx := range r.rows {
		if r.rows[idx].ID == id {
			r.rows[idx].PenaltyAwarded = penaltyAwarded
			r.rows[idx].RedCardShown = redCardShown
			return nil
		}
	}
	return nil
}
