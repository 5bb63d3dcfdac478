package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/matchday-io/matchday/internal/domain/aggregation"
	"github.com/matchday-io/matchday/internal/domain/playerstats"
	qb "github.com/matchday-io/matchday/internal/platform/querybuilder"
)

type AggregationRepository struct {
	db *sqlx.DB
}

type aggregationStateTableModel struct {
	HomeTeam      string    `db:"home_team"`
	AwayTeam      string    `db:"away_team"`
	LineupApplied bool      `db:"lineup_applied"`
	EventsApplied bool      `db:"events_applied"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func NewAggregationRepository(db *sqlx.DB) *AggregationRepository {
	return &AggregationRepository{db: db}
}

func (r *AggregationRepository) GetState(ctx context.Context, home, away string) (aggregation.State, bool, error) {
	query, args, err := qb.Select(
		"home_team", "away_team", "lineup_applied", "events_applied", "updated_at",
	).From("aggregation_states").
		Where(
			qb.Eq("home_team", home),
			qb.Eq("away_team", away),
		).
		ToSQL()
	if err != nil {
		return aggregation.State{}, false, fmt.Errorf("build get aggregation state query: %w", err)
	}

	var row aggregationStateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return aggregation.State{}, false, nil
		}
		return aggregation.State{}, false, fmt.Errorf("get aggregation state: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *AggregationRepository) EnsureState(ctx context.Context, home, away string) (aggregation.State, error) {
	query, args, err := qb.InsertInto("aggregation_states").
		Columns("home_team", "away_team", "lineup_applied", "events_applied", "updated_at").
		Values(home, away, false, false, time.Now().UTC()).
		Suffix("ON CONFLICT (home_team, away_team) DO NOTHING").
		ToSQL()
	if err != nil {
		return aggregation.State{}, fmt.Errorf("build ensure aggregation state query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return aggregation.State{}, fmt.Errorf("ensure aggregation state: %w", err)
	}

	state, exists, err := r.GetState(ctx, home, away)
	if err != nil {
		return aggregation.State{}, err
	}
	if !exists {
		return aggregation.State{}, fmt.Errorf("aggregation state missing after ensure for %s vs %s", home, away)
	}
	return state, nil
}

func (r *AggregationRepository) ApplyLineupIncrements(ctx context.Context, home, away string, items []playerstats.Increment) (bool, error) {
	return r.applyLatched(ctx, home, away, "lineup_applied", items)
}

func (r *AggregationRepository) ApplyEventIncrements(ctx context.Context, home, away string, items []playerstats.Increment) (bool, error) {
	return r.applyLatched(ctx, home, away, "events_applied", items)
}

// applyLatched claims the latch column and writes the increments in
// one transaction. The compare-and-set WHERE keeps two concurrent
// finalizations from both applying; a failed commit leaves the latch
// unset so the next run retries the whole contribution.
func (r *AggregationRepository) applyLatched(ctx context.Context, home, away, column string, items []playerstats.Increment) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin latched apply: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := qb.Update("aggregation_states").
		Set(column, true).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("home_team", home),
			qb.Eq("away_team", away),
			qb.Expr(column+" = FALSE"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build claim %s query: %w", column, err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", column, err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim %s rows affected: %w", column, err)
	}
	if claimed == 0 {
		return false, nil
	}

	for _, item := range items {
		if err := upsertPlayerStatTx(ctx, tx, item); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit latched apply: %w", err)
	}
	return true, nil
}

func (r *AggregationRepository) ListIncomplete(ctx context.Context) ([]aggregation.State, error) {
	query, args, err := qb.Select(
		"home_team", "away_team", "lineup_applied", "events_applied", "updated_at",
	).From("aggregation_states").
		Where(qb.Expr("(lineup_applied = false OR events_applied = false)")).
		OrderBy("updated_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list incomplete states query: %w", err)
	}

	var rows []aggregationStateTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list incomplete states: %w", err)
	}

	out := make([]aggregation.State, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *AggregationRepository) HasTeamTableMark(ctx context.Context, home, away string) (bool, error) {
	query, args, err := qb.Select("1").From("team_table_marks").
		Where(
			qb.Eq("home_team", home),
			qb.Eq("away_team", away),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build has team table mark query: %w", err)
	}

	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("has team table mark: %w", err)
	}
	return true, nil
}

// ApplyTeamIncrements inserts the mark and the team counters in one
// transaction; the conflict-free insert is the claim.
func (r *AggregationRepository) ApplyTeamIncrements(ctx context.Context, home, away string, items []playerstats.Increment) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin team table apply: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := qb.InsertInto("team_table_marks").
		Columns("home_team", "away_team", "marked_at").
		Values(home, away, time.Now().UTC()).
		Suffix("ON CONFLICT (home_team, away_team) DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build claim team table mark query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("claim team table mark: %w", err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim team table mark rows affected: %w", err)
	}
	if claimed == 0 {
		return false, nil
	}

	for _, item := range items {
		if err := upsertTeamPlayerStatTx(ctx, tx, item); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit team table apply: %w", err)
	}
	return true, nil
}

func (m aggregationStateTableModel) toDomain() aggregation.State {
	return aggregation.State{
		HomeTeam:      m.HomeTeam,
		AwayTeam:      m.AwayTeam,
		LineupApplied: m.LineupApplied,
		EventsApplied: m.EventsApplied,
		UpdatedAt:     m.UpdatedAt,
	}
}
