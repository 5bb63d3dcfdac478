package usecase

import (
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/domain/snapshot"
	"github.com/matchday-io/matchday/internal/infrastructure/repository/memory"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

func newTableFixture(t *testing.T, matches []match.Match) (*TableService, *memory.SnapshotRepository) {
	t.Helper()
	matchRepo := memory.NewMatchRepository(matches)
	snapshots := memory.NewSnapshotRepository()
	outcomeSvc := NewOutcomeService(matchRepo, memory.NewEventRepository(nil), logging.NewNop())
	service := NewTableService(matchRepo, outcomeSvc, snapshots, logging.NewNop())
	return service, snapshots
}

func TestTableService_UpsertResult_ReplacesByTeamPair(t *testing.T) {
	service, snapshots := newTableFixture(t, nil)

	row := match.Match{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Tournament: "premier-league"}
	if err := service.UpsertResult(t.Context(), row, Outcome{HomeGoals: 1, AwayGoals: 0}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	other := match.Match{HomeTeam: "Liverpool", AwayTeam: "Everton"}
	if err := service.UpsertResult(t.Context(), other, Outcome{HomeGoals: 2, AwayGoals: 2}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	// Re-finalizing the first pair replaces its row in place.
	if err := service.UpsertResult(t.Context(), row, Outcome{HomeGoals: 3, AwayGoals: 1}); err != nil {
		t.Fatalf("replacing upsert failed: %v", err)
	}

	snap, exists, err := snapshots.Get(t.Context(), snapshot.KeyResults)
	if err != nil || !exists {
		t.Fatalf("expected results snapshot, exists=%v err=%v", exists, err)
	}

	var rows []ResultRow
	if err := sonic.Unmarshal(snap.Payload, &rows); err != nil {
		t.Fatalf("unmarshal results: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 result rows, got %d", len(rows))
	}
	if rows[0].HomeTeam != "Arsenal" || rows[0].HomeGoals != 3 || rows[0].AwayGoals != 1 {
		t.Fatalf("expected replaced row 3-1, got %+v", rows[0])
	}
}

func TestTableService_RebuildSchedule_FiltersAndOrders(t *testing.T) {
	kickoff := time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)
	service, snapshots := newTableFixture(t, []match.Match{
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Status: match.StatusFinished, KickoffAt: kickoff},
		{HomeTeam: "Leeds", AwayTeam: "Spurs", Status: match.StatusCancelled, KickoffAt: kickoff},
		{HomeTeam: "Liverpool", AwayTeam: "Everton", Status: match.StatusScheduled, KickoffAt: kickoff.Add(48 * time.Hour)},
		{HomeTeam: "Brighton", AwayTeam: "Fulham", Status: match.StatusScheduled, KickoffAt: kickoff.Add(24 * time.Hour)},
		{HomeTeam: "Newcastle", AwayTeam: "Villa", Status: match.StatusLive, KickoffAt: kickoff.Add(72 * time.Hour)},
	})

	if err := service.RebuildSchedule(t.Context()); err != nil {
		t.Fatalf("rebuild schedule failed: %v", err)
	}

	snap, exists, err := snapshots.Get(t.Context(), snapshot.KeySchedule)
	if err != nil || !exists {
		t.Fatalf("expected schedule snapshot, exists=%v err=%v", exists, err)
	}

	var rows []ScheduleRow
	if err := sonic.Unmarshal(snap.Payload, &rows); err != nil {
		t.Fatalf("unmarshal schedule: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected finished and cancelled filtered out, got %d rows", len(rows))
	}
	if rows[0].HomeTeam != "Newcastle" {
		t.Fatalf("expected live fixture first, got %+v", rows[0])
	}
	if rows[1].HomeTeam != "Brighton" || rows[2].HomeTeam != "Liverpool" {
		t.Fatalf("expected scheduled fixtures by kickoff, got %+v then %+v", rows[1], rows[2])
	}
	if want := kickoff.Add(24 * time.Hour).UTC().Format("2006-01-02"); rows[1].MatchDate != want {
		t.Fatalf("expected match date %s, got %s", want, rows[1].MatchDate)
	}
}

func TestTableService_RebuildLeagueTable_StandingsAndTiebreaks(t *testing.T) {
	service, snapshots := newTableFixture(t, []match.Match{
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Status: match.StatusFinished, HomeScore: intPtr(3), AwayScore: intPtr(0)},
		{HomeTeam: "Liverpool", AwayTeam: "Chelsea", Status: match.StatusFinished, HomeScore: intPtr(1), AwayScore: intPtr(0)},
		{HomeTeam: "Arsenal", AwayTeam: "Liverpool", Status: match.StatusFinished, HomeScore: intPtr(1), AwayScore: intPtr(1)},
		// No score and no events: skipped without failing the rebuild.
		{HomeTeam: "Leeds", AwayTeam: "Spurs", Status: match.StatusFinished},
	})

	if err := service.RebuildLeagueTable(t.Context()); err != nil {
		t.Fatalf("rebuild league table failed: %v", err)
	}

	snap, exists, err := snapshots.Get(t.Context(), snapshot.KeyLeagueTable)
	if err != nil || !exists {
		t.Fatalf("expected league-table snapshot, exists=%v err=%v", exists, err)
	}

	var rows []TableRow
	if err := sonic.Unmarshal(snap.Payload, &rows); err != nil {
		t.Fatalf("unmarshal league table: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 teams, got %d", len(rows))
	}

	if rows[0].Team != "Arsenal" || rows[0].Points != 4 || rows[0].Position != 1 {
		t.Fatalf("unexpected leader: %+v", rows[0])
	}
	if rows[0].Won != 1 || rows[0].Drawn != 1 || rows[0].GoalDiff != 3 {
		t.Fatalf("unexpected leader record: %+v", rows[0])
	}
	if rows[1].Team != "Liverpool" || rows[1].Points != 4 {
		t.Fatalf("expected liverpool second on goal difference, got %+v", rows[1])
	}
	if rows[2].Team != "Chelsea" || rows[2].Points != 0 || rows[2].Played != 2 {
		t.Fatalf("unexpected bottom row: %+v", rows[2])
	}
}
