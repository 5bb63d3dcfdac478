package memory

import (
	"context"
	"sync"
	"time"

	"github.com/matchday-io/matchday/internal/domain/aggregation"
	"github.com/matchday-io/matchday/internal/domain/playerstats"
)

// AggregationRepository pairs the idempotency markers with the stats
// store they guard so each Apply* claims its marker and writes the
// counters as one step, like the relational transaction does.
type AggregationRepository struct {
	mu     sync.RWMutex
	states map[string]aggregation.State
	marks  map[string]aggregation.TeamTableMark
	stats  *PlayerStatsRepository
}

func NewAggregationRepository(stats *PlayerStatsRepository) *AggregationRepository {
	return &AggregationRepository{
		states: make(map[string]aggregation.State),
		marks:  make(map[string]aggregation.TeamTableMark),
		stats:  stats,
	}
}

func stateKey(home, away string) string {
	return home + "|" + away
}

func (r *AggregationRepository) GetState(_ context.Context, home, away string) (aggregation.State, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[stateKey(home, away)]
	return state, ok, nil
}

func (r *AggregationRepository) EnsureState(_ context.Context, home, away string) (aggregation.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := stateKey(home, away)
	if state, ok := r.states[key]; ok {
		return state, nil
	}
	state := aggregation.State{
		HomeTeam:  home,
		AwayTeam:  away,
		UpdatedAt: time.Now().UTC(),
	}
	r.states[key] = state
	return state, nil
}

func (r *AggregationRepository) ApplyLineupIncrements(ctx context.Context, home, away string, items []playerstats.Increment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := stateKey(home, away)
	state := r.states[key]
	if state.LineupApplied {
		return false, nil
	}
	if err := r.stats.ApplyIncrements(ctx, items); err != nil {
		return false, err
	}
	state.HomeTeam, state.AwayTeam = home, away
	state.LineupApplied = true
	state.UpdatedAt = time.Now().UTC()
	r.states[key] = state
	return true, nil
}

func (r *AggregationRepository) ApplyEventIncrements(ctx context.Context, home, away string, items []playerstats.Increment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := stateKey(home, away)
	state := r.states[key]
	if state.EventsApplied {
		return false, nil
	}
	if err := r.stats.ApplyIncrements(ctx, items); err != nil {
		return false, err
	}
	state.HomeTeam, state.AwayTeam = home, away
	state.EventsApplied = true
	state.UpdatedAt = time.Now().UTC()
	r.states[key] = state
	return true, nil
}

func (r *AggregationRepository) ListIncomplete(_ context.Context) ([]aggregation.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []aggregation.State
	for _, state := range r.states {
		if !state.LineupApplied || !state.EventsApplied {
			out = append(out, state)
		}
	}
	return out, nil
}

func (r *AggregationRepository) HasTeamTableMark(_ context.Context, home, away string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.marks[stateKey(home, away)]
	return ok, nil
}

func (r *AggregationRepository) ApplyTeamIncrements(ctx context.Context, home, away string, items []playerstats.Increment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := stateKey(home, away)
	if _, ok := r.marks[key]; ok {
		return false, nil
	}
	if err := r.stats.ApplyTeamIncrements(ctx, items); err != nil {
		return false, err
	}
	r.marks[key] = aggregation.TeamTableMark{
		HomeTeam: home,
		AwayTeam: away,
		MarkedAt: time.Now().UTC(),
	}
	return true, nil
}
