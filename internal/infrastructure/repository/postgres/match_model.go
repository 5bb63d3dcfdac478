package postgres

import (
	"database/sql"
	"time"

	"github.com/matchday-io/matchday/internal/domain/match"
)

type matchTableModel struct {
	ID             int64         `db:"id"`
	HomeTeam       string        `db:"home_team"`
	AwayTeam       string        `db:"away_team"`
	HomeTeamID     string        `db:"home_team_id"`
	AwayTeamID     string        `db:"away_team_id"`
	Tournament     string        `db:"tournament"`
	KickoffAt      time.Time     `db:"kickoff_at"`
	Status         string        `db:"status"`
	HomeScore      sql.NullInt64 `db:"home_score"`
	AwayScore      sql.NullInt64 `db:"away_score"`
	PenaltyAwarded sql.NullBool  `db:"penalty_awarded"`
	RedCardShown   sql.NullBool  `db:"red_card_shown"`
	FinishedAt     *time.Time    `db:"finished_at"`
}

func (m matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:             m.ID,
		HomeTeam:       m.HomeTeam,
		AwayTeam:       m.AwayTeam,
		HomeTeamID:     m.HomeTeamID,
		AwayTeamID:     m.AwayTeamID,
		Tournament:     m.Tournament,
		KickoffAt:      m.KickoffAt,
		Status:         m.Status,
		HomeScore:      intPtrFromNull(m.HomeScore),
		AwayScore:      intPtrFromNull(m.AwayScore),
		PenaltyAwarded: boolPtrFromNull(m.PenaltyAwarded),
		RedCardShown:   boolPtrFromNull(m.RedCardShown),
		FinishedAt:     m.FinishedAt,
	}
}
