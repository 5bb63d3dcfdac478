package memory

import (
	"testing"

	"github.com/matchday-io/matchday/internal/domain/playerstats"
)

func TestAggregationRepository_ApplyClaimsMarkerWithIncrements(t *testing.T) {
	stats := NewPlayerStatsRepository()
	repo := NewAggregationRepository(stats)
	inc := []playerstats.Increment{{PlayerID: "p1", PlayerName: "Saka", TeamID: "ars", Matches: 1}}

	applied, err := repo.ApplyLineupIncrements(t.Context(), "Arsenal", "Chelsea", inc)
	if err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	if !applied {
		t.Fatal("first apply must claim the marker")
	}

	// A claimed marker rejects the batch without touching the counters.
	applied, err = repo.ApplyLineupIncrements(t.Context(), "Arsenal", "Chelsea", inc)
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if applied {
		t.Fatal("second apply must report the marker as already claimed")
	}

	stat, exists, err := stats.GetByPlayer(t.Context(), "p1")
	if err != nil || !exists {
		t.Fatalf("expected player stats, exists=%v err=%v", exists, err)
	}
	if stat.Matches != 1 {
		t.Fatalf("replayed batch double counted: matches=%d", stat.Matches)
	}

	state, exists, err := repo.GetState(t.Context(), "Arsenal", "Chelsea")
	if err != nil || !exists {
		t.Fatalf("expected aggregation state, exists=%v err=%v", exists, err)
	}
	if !state.LineupApplied || state.EventsApplied {
		t.Fatalf("unexpected latch state: %+v", state)
	}
}

func TestAggregationRepository_ApplyTeamIncrementsOnce(t *testing.T) {
	stats := NewPlayerStatsRepository()
	repo := NewAggregationRepository(stats)
	inc := []playerstats.Increment{{PlayerID: "p1", TeamID: "ars", Goals: 2}}

	if applied, err := repo.ApplyTeamIncrements(t.Context(), "Arsenal", "Chelsea", inc); err != nil || !applied {
		t.Fatalf("first team apply: applied=%v err=%v", applied, err)
	}
	if applied, err := repo.ApplyTeamIncrements(t.Context(), "Arsenal", "Chelsea", inc); err != nil || applied {
		t.Fatalf("second team apply must be a no-op: applied=%v err=%v", applied, err)
	}

	rows, err := stats.ListByTeam(t.Context(), "ars")
	if err != nil {
		t.Fatalf("list team stats: %v", err)
	}
	if len(rows) != 1 || rows[0].Goals != 2 {
		t.Fatalf("team counters double counted: %+v", rows)
	}
}
