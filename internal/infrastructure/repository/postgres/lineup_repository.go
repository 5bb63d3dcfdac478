package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/matchday-io/matchday/internal/domain/lineup"
	qb "github.com/matchday-io/matchday/internal/platform/querybuilder"
)

type LineupRepository struct {
	db *sqlx.DB
}

type lineupTableModel struct {
	HomeTeam   string `db:"home_team"`
	AwayTeam   string `db:"away_team"`
	TeamID     string `db:"team_id"`
	PlayerID   string `db:"player_id"`
	PlayerName string `db:"player_name"`
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

func (r *LineupRepository) ListByMatch(ctx context.Context, home, away string) ([]lineup.Entry, error) {
	query, args, err := qb.Select(
		"home_team", "away_team", "team_id", "player_id", "player_name",
	).From("lineups").
		Where(
			qb.Eq("home_team", home),
			qb.Eq("away_team", away),
		).
		OrderBy("team_id", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list lineup query: %w", err)
	}

	var rows []lineupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list lineup: %w", err)
	}

	out := make([]lineup.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, lineup.Entry{
			HomeTeam:   row.HomeTeam,
			AwayTeam:   row.AwayTeam,
			TeamID:     row.TeamID,
			PlayerID:   row.PlayerID,
			PlayerName: row.PlayerName,
		})
	}

	return out, nil
}
