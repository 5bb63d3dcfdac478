package playerstats

import "context"

// Increment is one additive contribution to a player's counters.
type Increment struct {
	PlayerID    string
	PlayerName  string
	Tournament  string
	TeamID      string
	Matches     int
	Goals       int
	Assists     int
	YellowCards int
	RedCards    int
}

// Repository reads running player aggregates. Writes go through
// aggregation.Repository, which commits every increment batch together
// with the idempotency marker that guards it.
type Repository interface {
	GetByPlayer(ctx context.Context, playerID string) (PlayerStat, bool, error)
	ListAll(ctx context.Context) ([]PlayerStat, error)
	ListByTeam(ctx context.Context, teamID string) ([]TeamPlayerStat, error)
}
