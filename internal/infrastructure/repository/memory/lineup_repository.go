package memory

import (
	"context"
	"sync"

	"github.com/matchday-io/matchday/internal/domain/lineup"
)

type LineupRepository struct {
	mu   sync.RWMutex
	rows []lineup.Entry
}

func NewLineupRepository(entries []lineup.Entry) *LineupRepository {
	return &LineupRepository{rows: append([]lineup.Entry(nil), entries...)}
}

func (r *LineupRepository) Add(item lineup.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows = append(r.rows, item)
}

func (r *LineupRepository) ListByMatch(_ context.Context, home, away string) ([]lineup.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []lineup.Entry
	for _, item := range r.rows {
		if item.HomeTeam == home && item.AwayTeam == away {
			out = append(out, item)
		}
	}
	return out, nil
}
