package playerstats

// PlayerStat is the tournament-scoped running aggregate for a player.
// Counters only grow; every increment is tied to exactly one
// (match, contribution) pair through the aggregation ledger.
type PlayerStat struct {
	PlayerID    string
	PlayerName  string
	Tournament  string
	Matches     int
	Goals       int
	Assists     int
	YellowCards int
	RedCards    int
}

// TeamPlayerStat mirrors the same counters keyed by team for
// team-scoped views.
type TeamPlayerStat struct {
	TeamID      string
	PlayerID    string
	Matches     int
	Goals       int
	Assists     int
	YellowCards int
	RedCards    int
}

// Points is the scorer-board ranking value.
func (s PlayerStat) Points() int {
	return s.Goals + s.Assists
}
