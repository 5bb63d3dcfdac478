package lineup

// Entry records that a player was named in a team's lineup for one
// match, keyed by the legacy team-name pair.
type Entry struct {
	HomeTeam   string
	AwayTeam   string
	TeamID     string
	PlayerID   string
	PlayerName string
}
