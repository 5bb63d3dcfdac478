package memory

import (
	"context"
	"sync"

	"github.com/matchday-io/matchday/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	mu        sync.RWMutex
	players   map[string]playerstats.PlayerStat
	teamStats map[string]playerstats.TeamPlayerStat
}

func NewPlayerStatsRepository() *PlayerStatsRepository {
	return &PlayerStatsRepository{
		players:   make(map[string]playerstats.PlayerStat),
		teamStats: make(map[string]playerstats.TeamPlayerStat),
	}
}

func (r *PlayerStatsRepository) GetByPlayer(_ context.Context, playerID string) (playerstats.PlayerStat, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.players[playerID]
	return item, ok, nil
}

func (r *PlayerStatsRepository) ListAll(_ context.Context) ([]playerstats.PlayerStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstats.PlayerStat, 0, len(r.players))
	for _, item := range r.players {
		out = append(out, item)
	}
	return out, nil
}

func (r *PlayerStatsRepository) ApplyIncrements(_ context.Context, items []playerstats.Increment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		stat := r.players[item.PlayerID]
		stat.PlayerID = item.PlayerID
		if item.PlayerName != "" {
			stat.PlayerName = item.PlayerName
		}
		if item.Tournament != "" {
			stat.Tournament = item.Tournament
		}
		stat.Matches += item.Matches
		stat.Goals += item.Goals
		stat.Assists += item.Assists
		stat.YellowCards += item.YellowCards
		stat.RedCards += item.RedCards
		r.players[item.PlayerID] = stat
	}
	return nil
}

func (r *PlayerStatsRepository) ListByTeam(_ context.Context, teamID string) ([]playerstats.TeamPlayerStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []playerstats.TeamPlayerStat
	for _, item := range r.teamStats {
		if item.TeamID == teamID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *PlayerStatsRepository) ApplyTeamIncrements(_ context.Context, items []playerstats.Increment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		key := item.TeamID + "|" + item.PlayerID
		stat := r.teamStats[key]
		stat.TeamID = item.TeamID
		stat.PlayerID = item.PlayerID
		stat.Matches += item.Matches
		stat.Goals += item.Goals
		stat.Assists += item.Assists
		stat.YellowCards += item.YellowCards
		stat.RedCards += item.RedCards
		r.teamStats[key] = stat
	}
	return nil
}
