package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/domain/matchevent"
	"github.com/matchday-io/matchday/internal/infrastructure/repository/memory"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestOutcomeService_Resolve_StoredScoreWins(t *testing.T) {
	matchRepo := memory.NewMatchRepository([]match.Match{{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		KickoffAt: time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC),
		Status:    match.StatusFinished,
		HomeScore: intPtr(2),
		AwayScore: intPtr(1),
	}})
	// Conflicting events must not override the stored score.
	eventRepo := memory.NewEventRepository([]matchevent.Event{
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kind: matchevent.KindGoal, Side: matchevent.SideAway},
	})

	service := NewOutcomeService(matchRepo, eventRepo, logging.NewNop())

	outcome, resolved, err := service.Resolve(t.Context(), "Arsenal", "Chelsea")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !resolved {
		t.Fatal("expected outcome to resolve")
	}
	if outcome.HomeGoals != 2 || outcome.AwayGoals != 1 {
		t.Fatalf("expected 2-1, got %d-%d", outcome.HomeGoals, outcome.AwayGoals)
	}
	if outcome.Winner() != "1" {
		t.Fatalf("expected home win, got %q", outcome.Winner())
	}
}

func TestOutcomeService_Resolve_EventFallbackPersistsScore(t *testing.T) {
	matchRepo := memory.NewMatchRepository([]match.Match{{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		KickoffAt: time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC),
		Status:    match.StatusFinished,
	}})
	eventRepo := memory.NewEventRepository([]matchevent.Event{
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kind: matchevent.KindGoal, Side: matchevent.SideHome, PlayerID: "p1"},
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kind: matchevent.KindGoal, Side: matchevent.SideAway, PlayerID: "p2"},
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kind: matchevent.KindGoal, PlayerID: "p3"},
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kind: matchevent.KindYellow, Side: matchevent.SideHome, PlayerID: "p1"},
	})

	service := NewOutcomeService(matchRepo, eventRepo, logging.NewNop())

	outcome, resolved, err := service.Resolve(t.Context(), "Arsenal", "Chelsea")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !resolved {
		t.Fatal("expected outcome to resolve from events")
	}
	// Untagged goals count for the home side.
	if outcome.HomeGoals != 2 || outcome.AwayGoals != 1 {
		t.Fatalf("expected 2-1 from events, got %d-%d", outcome.HomeGoals, outcome.AwayGoals)
	}

	row, exists, err := matchRepo.GetByTeams(t.Context(), "Arsenal", "Chelsea")
	if err != nil || !exists {
		t.Fatalf("expected match row, exists=%v err=%v", exists, err)
	}
	if !row.HasScore() {
		t.Fatal("expected recovered score to be written back")
	}
	if *row.HomeScore != 2 || *row.AwayScore != 1 {
		t.Fatalf("expected persisted 2-1, got %d-%d", *row.HomeScore, *row.AwayScore)
	}
}

func TestOutcomeService_Resolve_NoDataStaysUnresolved(t *testing.T) {
	matchRepo := memory.NewMatchRepository(nil)
	eventRepo := memory.NewEventRepository(nil)

	service := NewOutcomeService(matchRepo, eventRepo, logging.NewNop())

	_, resolved, err := service.Resolve(t.Context(), "Arsenal", "Chelsea")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved {
		t.Fatal("expected unresolved outcome without score or events")
	}
}

func TestOutcomeService_Resolve_SpecialFlags(t *testing.T) {
	matchRepo := memory.NewMatchRepository([]match.Match{{
		HomeTeam:       "Arsenal",
		AwayTeam:       "Chelsea",
		Status:         match.StatusFinished,
		HomeScore:      intPtr(0),
		AwayScore:      intPtr(0),
		PenaltyAwarded: boolPtr(true),
	}})

	service := NewOutcomeService(matchRepo, memory.NewEventRepository(nil), logging.NewNop())

	outcome, resolved, err := service.Resolve(t.Context(), "Arsenal", "Chelsea")
	if err != nil || !resolved {
		t.Fatalf("resolve failed: resolved=%v err=%v", resolved, err)
	}
	if !outcome.Penalty || !outcome.PenaltyRecorded {
		t.Fatalf("expected recorded penalty, got %+v", outcome)
	}
	if outcome.RedCardRecorded {
		t.Fatal("expected red card to stay unrecorded")
	}
	if outcome.Winner() != "x" {
		t.Fatalf("expected draw encoding, got %q", outcome.Winner())
	}
}

func TestOutcomeService_Resolve_BlankTeamsRejected(t *testing.T) {
	service := NewOutcomeService(memory.NewMatchRepository(nil), memory.NewEventRepository(nil), logging.NewNop())

	_, _, err := service.Resolve(t.Context(), " ", "Chelsea")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
