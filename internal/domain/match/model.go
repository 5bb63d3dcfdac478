package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Match is one canonical match row. Legacy callers address a match by
// the (HomeTeam, AwayTeam) name pair; the numeric ID is canonical.
type Match struct {
	ID             int64
	HomeTeam       string
	AwayTeam       string
	HomeTeamID     string
	AwayTeamID     string
	Tournament     string
	KickoffAt      time.Time
	Status         string
	HomeScore      *int
	AwayScore      *int
	PenaltyAwarded *bool
	RedCardShown   *bool
	FinishedAt     *time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, "IN_PLAY", "HT", "1H", "2H", "ET":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCancelled, StatusPostponed, "ABANDONED":
		return true
	default:
		return false
	}
}

// HasScore reports whether both final score fields are recorded.
func (m Match) HasScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// StatusPriority orders candidate rows when several canonical matches
// exist for the same team pair: live rows win over scheduled rows,
// scheduled over finished.
func StatusPriority(status string) int {
	switch {
	case IsLiveStatus(status):
		return 0
	case NormalizeStatus(status) == StatusScheduled:
		return 1
	default:
		return 2
	}
}
