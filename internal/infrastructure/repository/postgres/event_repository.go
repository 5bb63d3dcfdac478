package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/matchday-io/matchday/internal/domain/matchevent"
	qb "github.com/matchday-io/matchday/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

type eventTableModel struct {
	ID         int64  `db:"id"`
	HomeTeam   string `db:"home_team"`
	AwayTeam   string `db:"away_team"`
	Kind       string `db:"kind"`
	Side       string `db:"side"`
	PlayerID   string `db:"player_id"`
	PlayerName string `db:"player_name"`
	TeamID     string `db:"team_id"`
	Minute     int    `db:"minute"`
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) ListByMatch(ctx context.Context, home, away string) ([]matchevent.Event, error) {
	query, args, err := qb.Select(
		"id", "home_team", "away_team", "kind", "side",
		"player_id", "player_name", "team_id", "minute",
	).From("match_events").
		Where(
			qb.Eq("home_team", home),
			qb.Eq("away_team", away),
		).
		OrderBy("minute", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match events query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match events: %w", err)
	}

	out := make([]matchevent.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchevent.Event{
			ID:         row.ID,
			HomeTeam:   row.HomeTeam,
			AwayTeam:   row.AwayTeam,
			Kind:       row.Kind,
			Side:       row.Side,
			PlayerID:   row.PlayerID,
			PlayerName: row.PlayerName,
			TeamID:     row.TeamID,
			Minute:     row.Minute,
		})
	}

	return out, nil
}
