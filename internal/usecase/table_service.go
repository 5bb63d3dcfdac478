package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/domain/snapshot"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

// ResultRow is one finished match inside the results snapshot.
type ResultRow struct {
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	HomeGoals  int    `json:"home_goals"`
	AwayGoals  int    `json:"away_goals"`
	Tournament string `json:"tournament,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// ScheduleRow is one upcoming or live match inside the schedule
// snapshot.
type ScheduleRow struct {
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	Tournament string `json:"tournament,omitempty"`
	// MatchDate is the UTC calendar day, the grouping key for
	// schedule views.
	MatchDate string `json:"match_date"`
	KickoffAt string `json:"kickoff_at"`
	Status    string `json:"status"`
}

// TableRow is one team's standing inside the league-table snapshot.
type TableRow struct {
	Position     int    `json:"position"`
	Team         string `json:"team"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Drawn        int    `json:"drawn"`
	Lost         int    `json:"lost"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	GoalDiff     int    `json:"goal_diff"`
	Points       int    `json:"points"`
}

// TableService maintains the match-facing read models (results,
// schedule, league standings). Each is stored as a whole snapshot and
// replaced atomically.
type TableService struct {
	matchRepo  match.Repository
	outcomeSvc *OutcomeService
	snapshots  snapshot.Store
	logger     *logging.Logger
	now        func() time.Time
}

func NewTableService(
	matchRepo match.Repository,
	outcomeSvc *OutcomeService,
	snapshots snapshot.Store,
	logger *logging.Logger,
) *TableService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TableService{
		matchRepo:  matchRepo,
		outcomeSvc: outcomeSvc,
		snapshots:  snapshots,
		logger:     logger,
		now:        time.Now,
	}
}

// UpsertResult merges one finished match into the results snapshot.
// The (home, away) pair is the merge key, so re-finalizing a match
// replaces its row in place instead of appending a duplicate.
func (s *TableService) UpsertResult(ctx context.Context, m match.Match, outcome Outcome) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TableService.UpsertResult")
	defer span.End()

	var rows []ResultRow
	if snap, exists, err := s.snapshots.Get(ctx, snapshot.KeyResults); err != nil {
		return fmt.Errorf("get results snapshot: %w", err)
	} else if exists && len(snap.Payload) > 0 {
		if err := sonic.Unmarshal(snap.Payload, &rows); err != nil {
			s.logger.WarnContext(ctx, "results snapshot unreadable, rebuilding from scratch", "error", err)
			rows = nil
		}
	}

	row := ResultRow{
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		HomeGoals:  outcome.HomeGoals,
		AwayGoals:  outcome.AwayGoals,
		Tournament: m.Tournament,
	}
	if m.FinishedAt != nil {
		row.FinishedAt = m.FinishedAt.UTC().Format(time.RFC3339)
	}

	replaced := false
	for i := range rows {
		if rows[i].HomeTeam == m.HomeTeam && rows[i].AwayTeam == m.AwayTeam {
			rows[i] = row
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, row)
	}

	payload, err := sonic.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := s.snapshots.Set(ctx, snapshot.KeyResults, payload); err != nil {
		return fmt.Errorf("set results snapshot: %w", err)
	}
	return nil
}

// RebuildSchedule rewrites the schedule snapshot from every match that
// has not finished, live fixtures first, then by kickoff time.
func (s *TableService) RebuildSchedule(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TableService.RebuildSchedule")
	defer span.End()

	matches, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}

	rows := make([]ScheduleRow, 0, len(matches))
	for _, m := range matches {
		status := match.NormalizeStatus(m.Status)
		if match.IsFinishedStatus(status) || match.IsCancelledLikeStatus(status) {
			continue
		}
		rows = append(rows, ScheduleRow{
			HomeTeam:   m.HomeTeam,
			AwayTeam:   m.AwayTeam,
			Tournament: m.Tournament,
			MatchDate:  m.KickoffAt.UTC().Format("2006-01-02"),
			KickoffAt:  m.KickoffAt.UTC().Format(time.RFC3339),
			Status:     status,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := match.StatusPriority(rows[i].Status), match.StatusPriority(rows[j].Status)
		if pi != pj {
			return pi < pj
		}
		return rows[i].KickoffAt < rows[j].KickoffAt
	})

	payload, err := sonic.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	if err := s.snapshots.Set(ctx, snapshot.KeySchedule, payload); err != nil {
		return fmt.Errorf("set schedule snapshot: %w", err)
	}
	return nil
}

// RebuildLeagueTable recomputes standings from every finished match
// with a resolvable score. Win 3, draw 1, loss 0; ties on points break
// by goal difference, then goals scored, then team name.
func (s *TableService) RebuildLeagueTable(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TableService.RebuildLeagueTable")
	defer span.End()

	matches, err := s.matchRepo.ListByStatus(ctx, match.StatusFinished)
	if err != nil {
		return fmt.Errorf("list finished matches: %w", err)
	}

	table := make(map[string]*TableRow)
	teamRow := func(name string) *TableRow {
		row, ok := table[name]
		if !ok {
			row = &TableRow{Team: name}
			table[name] = row
		}
		return row
	}

	for _, m := range matches {
		outcome, resolved, err := s.outcomeSvc.Resolve(ctx, m.HomeTeam, m.AwayTeam)
		if err != nil {
			s.logger.WarnContext(ctx, "standings skip match, outcome failed",
				"home", m.HomeTeam, "away", m.AwayTeam, "error", err)
			continue
		}
		if !resolved {
			continue
		}

		home, away := teamRow(m.HomeTeam), teamRow(m.AwayTeam)
		home.Played++
		away.Played++
		home.GoalsFor += outcome.HomeGoals
		home.GoalsAgainst += outcome.AwayGoals
		away.GoalsFor += outcome.AwayGoals
		away.GoalsAgainst += outcome.HomeGoals
		switch {
		case outcome.HomeGoals > outcome.AwayGoals:
			home.Won++
			home.Points += 3
			away.Lost++
		case outcome.HomeGoals < outcome.AwayGoals:
			away.Won++
			away.Points += 3
			home.Lost++
		default:
			home.Drawn++
			away.Drawn++
			home.Points++
			away.Points++
		}
	}

	rows := make([]TableRow, 0, len(table))
	for _, row := range table {
		row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].GoalDiff != rows[j].GoalDiff {
			return rows[i].GoalDiff > rows[j].GoalDiff
		}
		if rows[i].GoalsFor != rows[j].GoalsFor {
			return rows[i].GoalsFor > rows[j].GoalsFor
		}
		return rows[i].Team < rows[j].Team
	})
	for i := range rows {
		rows[i].Position = i + 1
	}

	payload, err := sonic.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal league table: %w", err)
	}
	if err := s.snapshots.Set(ctx, snapshot.KeyLeagueTable, payload); err != nil {
		return fmt.Errorf("set league-table snapshot: %w", err)
	}
	return nil
}
