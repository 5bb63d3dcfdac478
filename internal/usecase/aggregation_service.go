package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/matchday-io/matchday/internal/domain/aggregation"
	"github.com/matchday-io/matchday/internal/domain/lineup"
	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/domain/matchevent"
	"github.com/matchday-io/matchday/internal/domain/playerstats"
	"github.com/matchday-io/matchday/internal/domain/snapshot"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

const defaultScorerBoardSize = 10

// ScorerBoardRow is one ranked entry of the stats-table snapshot.
type ScorerBoardRow struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name"`
	Matches    int    `json:"matches"`
	Goals      int    `json:"goals"`
	Assists    int    `json:"assists"`
	Points     int    `json:"points"`
}

// AggregationService folds a finished match's lineup and events into
// running player totals exactly once per match. The two contribution
// categories latch independently, so one half can be retried after a
// partial failure without double-counting the other.
type AggregationService struct {
	aggRepo    aggregation.Repository
	lineupRepo lineup.Repository
	eventRepo  matchevent.Repository
	statsRepo  playerstats.Repository
	matchRepo  match.Repository
	snapshots  snapshot.Store
	boardSize  int
	logger     *logging.Logger
	now        func() time.Time
}

func NewAggregationService(
	aggRepo aggregation.Repository,
	lineupRepo lineup.Repository,
	eventRepo matchevent.Repository,
	statsRepo playerstats.Repository,
	matchRepo match.Repository,
	snapshots snapshot.Store,
	logger *logging.Logger,
) *AggregationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AggregationService{
		aggRepo:    aggRepo,
		lineupRepo: lineupRepo,
		eventRepo:  eventRepo,
		statsRepo:  statsRepo,
		matchRepo:  matchRepo,
		snapshots:  snapshots,
		boardSize:  defaultScorerBoardSize,
		logger:     logger,
		now:        time.Now,
	}
}

// SetBoardSize overrides how many rows the scorer board keeps.
func (s *AggregationService) SetBoardSize(n int) {
	if n > 0 {
		s.boardSize = n
	}
}

// Apply runs every pending contribution for the match. Sub-steps fail
// independently; the returned error joins whatever failed while the
// rest still progressed.
func (s *AggregationService) Apply(ctx context.Context, home, away string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregationService.Apply")
	defer span.End()

	state, err := s.aggRepo.EnsureState(ctx, home, away)
	if err != nil {
		return fmt.Errorf("ensure aggregation state: %w", err)
	}

	tournament := ""
	if row, exists, err := s.matchRepo.GetByTeams(ctx, home, away); err == nil && exists {
		tournament = row.Tournament
	}

	var errs []error

	if !state.LineupApplied {
		if err := s.applyLineupContribution(ctx, home, away, tournament); err != nil {
			errs = append(errs, fmt.Errorf("lineup contribution: %w", err))
		}
	}

	if !state.EventsApplied {
		if err := s.applyEventContribution(ctx, home, away, tournament); err != nil {
			errs = append(errs, fmt.Errorf("event contribution: %w", err))
		}
	}

	if err := s.applyTeamTable(ctx, home, away); err != nil {
		errs = append(errs, fmt.Errorf("team table contribution: %w", err))
	}

	if err := s.RebuildScorerBoard(ctx); err != nil {
		errs = append(errs, fmt.Errorf("rebuild scorer board: %w", err))
	}

	return errors.Join(errs...)
}

// applyLineupContribution counts one played match per distinct
// (team, player) pair named in the lineup, then flips the latch.
func (s *AggregationService) applyLineupContribution(ctx context.Context, home, away, tournament string) error {
	entries, err := s.lineupRepo.ListByMatch(ctx, home, away)
	if err != nil {
		return fmt.Errorf("list lineup: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	increments := make([]playerstats.Increment, 0, len(entries))
	for _, entry := range entries {
		if entry.PlayerID == "" {
			s.logger.WarnContext(ctx, "lineup entry without player, skipped",
				"home", home, "away", away, "team", entry.TeamID)
			continue
		}
		key := entry.TeamID + "|" + entry.PlayerID
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		increments = append(increments, playerstats.Increment{
			PlayerID:   entry.PlayerID,
			PlayerName: entry.PlayerName,
			Tournament: tournament,
			TeamID:     entry.TeamID,
			Matches:    1,
		})
	}

	applied, err := s.aggRepo.ApplyLineupIncrements(ctx, home, away, increments)
	if err != nil {
		return fmt.Errorf("apply lineup increments: %w", err)
	}
	if !applied {
		s.logger.DebugContext(ctx, "lineup contribution already latched", "home", home, "away", away)
	}
	return nil
}

// applyEventContribution folds goal/assist/card events into player
// counters, then flips the latch.
func (s *AggregationService) applyEventContribution(ctx context.Context, home, away, tournament string) error {
	events, err := s.eventRepo.ListByMatch(ctx, home, away)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	byPlayer := make(map[string]*playerstats.Increment)
	order := make([]string, 0, len(events))
	for _, ev := range events {
		if ev.PlayerID == "" {
			s.logger.WarnContext(ctx, "event without player, skipped",
				"home", home, "away", away, "kind", ev.Kind)
			continue
		}
		inc, ok := byPlayer[ev.PlayerID]
		if !ok {
			inc = &playerstats.Increment{
				PlayerID:   ev.PlayerID,
				PlayerName: ev.PlayerName,
				Tournament: tournament,
				TeamID:     ev.TeamID,
			}
			byPlayer[ev.PlayerID] = inc
			order = append(order, ev.PlayerID)
		}
		switch ev.Kind {
		case matchevent.KindGoal:
			inc.Goals++
		case matchevent.KindAssist:
			inc.Assists++
		case matchevent.KindYellow:
			inc.YellowCards++
		case matchevent.KindRed:
			inc.RedCards++
		}
	}

	increments := make([]playerstats.Increment, 0, len(order))
	for _, id := range order {
		increments = append(increments, *byPlayer[id])
	}
	applied, err := s.aggRepo.ApplyEventIncrements(ctx, home, away, increments)
	if err != nil {
		return fmt.Errorf("apply event increments: %w", err)
	}
	if !applied {
		s.logger.DebugContext(ctx, "event contribution already latched", "home", home, "away", away)
	}
	return nil
}

// applyTeamTable feeds the team-scoped player table. It carries its own
// existence marker because it aggregates by raw increments: replaying
// it would double count even when the latch-gated folds would not.
func (s *AggregationService) applyTeamTable(ctx context.Context, home, away string) error {
	marked, err := s.aggRepo.HasTeamTableMark(ctx, home, away)
	if err != nil {
		return fmt.Errorf("check team table mark: %w", err)
	}
	if marked {
		return nil
	}

	entries, err := s.lineupRepo.ListByMatch(ctx, home, away)
	if err != nil {
		return fmt.Errorf("list lineup for team table: %w", err)
	}
	events, err := s.eventRepo.ListByMatch(ctx, home, away)
	if err != nil {
		return fmt.Errorf("list events for team table: %w", err)
	}

	byKey := make(map[string]*playerstats.Increment)
	order := make([]string, 0, len(entries))
	upsert := func(teamID, playerID, playerName string) *playerstats.Increment {
		key := teamID + "|" + playerID
		inc, ok := byKey[key]
		if !ok {
			inc = &playerstats.Increment{TeamID: teamID, PlayerID: playerID, PlayerName: playerName}
			byKey[key] = inc
			order = append(order, key)
		}
		return inc
	}

	for _, entry := range entries {
		if entry.PlayerID == "" || entry.TeamID == "" {
			continue
		}
		inc := upsert(entry.TeamID, entry.PlayerID, entry.PlayerName)
		if inc.Matches == 0 {
			inc.Matches = 1
		}
	}
	for _, ev := range events {
		if ev.PlayerID == "" || ev.TeamID == "" {
			continue
		}
		inc := upsert(ev.TeamID, ev.PlayerID, ev.PlayerName)
		switch ev.Kind {
		case matchevent.KindGoal:
			inc.Goals++
		case matchevent.KindAssist:
			inc.Assists++
		case matchevent.KindYellow:
			inc.YellowCards++
		case matchevent.KindRed:
			inc.RedCards++
		}
	}

	increments := make([]playerstats.Increment, 0, len(order))
	for _, key := range order {
		increments = append(increments, *byKey[key])
	}
	applied, err := s.aggRepo.ApplyTeamIncrements(ctx, home, away, increments)
	if err != nil {
		return fmt.Errorf("apply team increments: %w", err)
	}
	if !applied {
		s.logger.DebugContext(ctx, "team table already marked", "home", home, "away", away)
	}
	return nil
}

// RebuildScorerBoard recomputes the leaderboard from every player
// total rather than incrementally, then replaces the stats-table
// snapshot wholesale.
func (s *AggregationService) RebuildScorerBoard(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregationService.RebuildScorerBoard")
	defer span.End()

	stats, err := s.statsRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list player stats: %w", err)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Points() != stats[j].Points() {
			return stats[i].Points() > stats[j].Points()
		}
		if stats[i].Matches != stats[j].Matches {
			return stats[i].Matches < stats[j].Matches
		}
		return stats[i].Goals > stats[j].Goals
	})

	rows := make([]ScorerBoardRow, 0, s.boardSize)
	for i := 0; i < s.boardSize; i++ {
		if i < len(stats) {
			item := stats[i]
			name := item.PlayerName
			if name == "" {
				name = item.PlayerID
			}
			rows = append(rows, ScorerBoardRow{
				Rank:       i + 1,
				PlayerID:   item.PlayerID,
				PlayerName: name,
				Matches:    item.Matches,
				Goals:      item.Goals,
				Assists:    item.Assists,
				Points:     item.Points(),
			})
			continue
		}
		rows = append(rows, ScorerBoardRow{Rank: i + 1, PlayerName: "-"})
	}

	payload, err := sonic.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal scorer board: %w", err)
	}
	if err := s.snapshots.Set(ctx, snapshot.KeyStatsTable, payload); err != nil {
		return fmt.Errorf("set stats-table snapshot: %w", err)
	}
	return nil
}
