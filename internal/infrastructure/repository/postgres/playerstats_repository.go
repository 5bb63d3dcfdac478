package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/matchday-io/matchday/internal/domain/playerstats"
	qb "github.com/matchday-io/matchday/internal/platform/querybuilder"
)

type PlayerStatsRepository struct {
	db *sqlx.DB
}

type playerStatTableModel struct {
	PlayerID    string `db:"player_id"`
	PlayerName  string `db:"player_name"`
	Tournament  string `db:"tournament"`
	Matches     int    `db:"matches"`
	Goals       int    `db:"goals"`
	Assists     int    `db:"assists"`
	YellowCards int    `db:"yellow_cards"`
	RedCards    int    `db:"red_cards"`
}

type teamPlayerStatTableModel struct {
	TeamID      string `db:"team_id"`
	PlayerID    string `db:"player_id"`
	Matches     int    `db:"matches"`
	Goals       int    `db:"goals"`
	Assists     int    `db:"assists"`
	YellowCards int    `db:"yellow_cards"`
	RedCards    int    `db:"red_cards"`
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

func (r *PlayerStatsRepository) GetByPlayer(ctx context.Context, playerID string) (playerstats.PlayerStat, bool, error) {
	query, args, err := qb.Select(
		"player_id", "player_name", "tournament",
		"matches", "goals", "assists", "yellow_cards", "red_cards",
	).From("player_stats").
		Where(qb.Eq("player_id", playerID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return playerstats.PlayerStat{}, false, fmt.Errorf("build get player stat query: %w", err)
	}

	var row playerStatTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playerstats.PlayerStat{}, false, nil
		}
		return playerstats.PlayerStat{}, false, fmt.Errorf("get player stat %s: %w", playerID, err)
	}

	return playerstats.PlayerStat{
		PlayerID:    row.PlayerID,
		PlayerName:  row.PlayerName,
		Tournament:  row.Tournament,
		Matches:     row.Matches,
		Goals:       row.Goals,
		Assists:     row.Assists,
		YellowCards: row.YellowCards,
		RedCards:    row.RedCards,
	}, true, nil
}

func (r *PlayerStatsRepository) ListAll(ctx context.Context) ([]playerstats.PlayerStat, error) {
	query, args, err := qb.Select(
		"player_id", "player_name", "tournament",
		"matches", "goals", "assists", "yellow_cards", "red_cards",
	).From("player_stats").
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player stats query: %w", err)
	}

	var rows []playerStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}

	out := make([]playerstats.PlayerStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerstats.PlayerStat{
			PlayerID:    row.PlayerID,
			PlayerName:  row.PlayerName,
			Tournament:  row.Tournament,
			Matches:     row.Matches,
			Goals:       row.Goals,
			Assists:     row.Assists,
			YellowCards: row.YellowCards,
			RedCards:    row.RedCards,
		})
	}
	return out, nil
}

// upsertPlayerStatTx adds one increment inside the caller's
// transaction, alongside the idempotency latch that guards it.
func upsertPlayerStatTx(ctx context.Context, tx *sqlx.Tx, item playerstats.Increment) error {
	query, args, err := qb.InsertInto("player_stats").
		Columns("player_id", "player_name", "tournament",
			"matches", "goals", "assists", "yellow_cards", "red_cards").
		Values(item.PlayerID, item.PlayerName, item.Tournament,
			item.Matches, item.Goals, item.Assists, item.YellowCards, item.RedCards).
		Suffix(`ON CONFLICT (player_id) DO UPDATE SET
			player_name = CASE WHEN EXCLUDED.player_name <> '' THEN EXCLUDED.player_name ELSE player_stats.player_name END,
			matches = player_stats.matches + EXCLUDED.matches,
			goals = player_stats.goals + EXCLUDED.goals,
			assists = player_stats.assists + EXCLUDED.assists,
			yellow_cards = player_stats.yellow_cards + EXCLUDED.yellow_cards,
			red_cards = player_stats.red_cards + EXCLUDED.red_cards`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build player stat upsert query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player stat %s: %w", item.PlayerID, err)
	}
	return nil
}

func (r *PlayerStatsRepository) ListByTeam(ctx context.Context, teamID string) ([]playerstats.TeamPlayerStat, error) {
	query, args, err := qb.Select(
		"team_id", "player_id",
		"matches", "goals", "assists", "yellow_cards", "red_cards",
	).From("team_player_stats").
		Where(qb.Eq("team_id", teamID)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list team player stats query: %w", err)
	}

	var rows []teamPlayerStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list team player stats: %w", err)
	}

	out := make([]playerstats.TeamPlayerStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerstats.TeamPlayerStat{
			TeamID:      row.TeamID,
			PlayerID:    row.PlayerID,
			Matches:     row.Matches,
			Goals:       row.Goals,
			Assists:     row.Assists,
			YellowCards: row.YellowCards,
			RedCards:    row.RedCards,
		})
	}
	return out, nil
}

func upsertTeamPlayerStatTx(ctx context.Context, tx *sqlx.Tx, item playerstats.Increment) error {
	query, args, err := qb.InsertInto("team_player_stats").
		Columns("team_id", "player_id",
			"matches", "goals", "assists", "yellow_cards", "red_cards").
		Values(item.TeamID, item.PlayerID,
			item.Matches, item.Goals, item.Assists, item.YellowCards, item.RedCards).
		Suffix(`ON CONFLICT (team_id, player_id) DO UPDATE SET
			matches = team_player_stats.matches + EXCLUDED.matches,
			goals = team_player_stats.goals + EXCLUDED.goals,
			assists = team_player_stats.assists + EXCLUDED.assists,
			yellow_cards = team_player_stats.yellow_cards + EXCLUDED.yellow_cards,
			red_cards = team_player_stats.red_cards + EXCLUDED.red_cards`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build team player stat upsert query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert team player stat %s/%s: %w", item.TeamID, item.PlayerID, err)
	}
	return nil
}
