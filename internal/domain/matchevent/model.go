package matchevent

import "strings"

const (
	KindGoal    = "goal"
	KindAssist  = "assist"
	KindYellow  = "yellow"
	KindRed     = "red"
	KindPenalty = "penalty"
)

const (
	SideHome = "home"
	SideAway = "away"
)

// Event is one recorded in-match occurrence, keyed to its match by the
// legacy team-name pair.
type Event struct {
	ID         int64
	HomeTeam   string
	AwayTeam   string
	Kind       string
	Side       string
	PlayerID   string
	PlayerName string
	TeamID     string
	Minute     int
}

// NormalizeSide resolves the per-event team tag. Untagged events count
// for the home side.
func NormalizeSide(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), SideAway) {
		return SideAway
	}
	return SideHome
}
