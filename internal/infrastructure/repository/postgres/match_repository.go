package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/matchday-io/matchday/internal/domain/match"
	qb "github.com/matchday-io/matchday/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

var matchSelectColumns = []string{
	"id",
	"home_team",
	"away_team",
	"home_team_id",
	"away_team_id",
	"tournament",
	"kickoff_at",
	"status",
	"home_score",
	"away_score",
	"penalty_awarded",
	"red_card_shown",
	"finished_at",
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByTeams(ctx context.Context, home, away string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		Where(
			qb.Eq("home_team", home),
			qb.Eq("away_team", away),
		).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) ListByTeams(ctx context.Context, home, away string) ([]match.Match, error) {
	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		Where(
			qb.Eq("home_team", home),
			qb.Eq("away_team", away),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by teams query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches by teams: %w", err)
	}

	return matchRowsToDomain(rows), nil
}

func (r *MatchRepository) ListAll(ctx context.Context) ([]match.Match, error) {
	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	return matchRowsToDomain(rows), nil
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status string) ([]match.Match, error) {
	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		Where(qb.Eq("status", status)).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by status query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches by status: %w", err)
	}

	return matchRowsToDomain(rows), nil
}

func (r *MatchRepository) UpdateResult(ctx context.Context, item match.Match) error {
	query, args, err := qb.Update("matches").
		Set("status", item.Status).
		Set("home_score", nullFromIntPtr(item.HomeScore)).
		Set("away_score", nullFromIntPtr(item.AwayScore)).
		Set("finished_at", item.FinishedAt).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match result query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update match result: %w", err)
	}
	return nil
}

func (r *MatchRepository) UpdateSpecials(ctx context.Context, id int64, penaltyAwarded, redCardShown *bool) error {
	query, args, err := qb.Update("matches").
		Set("penalty_awarded", nullFromBoolPtr(penaltyAwarded)).
		Set("red_card_shown", nullFromBoolPtr(redCardShown)).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match specials query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update match specials: %w", err)
	}
	return nil
}

func matchRowsToDomain(rows []matchTableModel) []match.Match {
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
