package usecase

import (
	"testing"
	"time"

	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/domain/snapshot"
	"github.com/matchday-io/matchday/internal/infrastructure/repository/memory"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

func TestWarmupService_WarmSnapshots(t *testing.T) {
	matchRepo := memory.NewMatchRepository([]match.Match{
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Status: match.StatusScheduled, KickoffAt: time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)},
		{HomeTeam: "Liverpool", AwayTeam: "Everton", Status: match.StatusFinished, HomeScore: intPtr(1), AwayScore: intPtr(0)},
	})
	snapshots := memory.NewSnapshotRepository()
	logger := logging.NewNop()

	outcomeSvc := NewOutcomeService(matchRepo, memory.NewEventRepository(nil), logger)
	tableSvc := NewTableService(matchRepo, outcomeSvc, snapshots, logger)
	statsRepo := memory.NewPlayerStatsRepository()
	aggSvc := NewAggregationService(
		memory.NewAggregationRepository(statsRepo),
		memory.NewLineupRepository(nil),
		memory.NewEventRepository(nil),
		statsRepo,
		matchRepo,
		snapshots,
		logger,
	)

	service := NewWarmupService(tableSvc, aggSvc, logger)
	if err := service.WarmSnapshots(t.Context()); err != nil {
		t.Fatalf("warm snapshots failed: %v", err)
	}

	for _, key := range []string{snapshot.KeySchedule, snapshot.KeyLeagueTable, snapshot.KeyStatsTable} {
		if _, exists, err := snapshots.Get(t.Context(), key); err != nil || !exists {
			t.Fatalf("expected %s snapshot after warmup, exists=%v err=%v", key, exists, err)
		}
	}
}
