package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchday-io/matchday/internal/domain/bet"
	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/infrastructure/repository/memory"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

var settlementKickoff = time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)

func newSettlementFixture(t *testing.T, matches []match.Match, bets []bet.Bet) (*SettlementService, *memory.BetRepository) {
	t.Helper()
	matchRepo := memory.NewMatchRepository(matches)
	betRepo := memory.NewBetRepository(matchRepo, bets)
	outcomeSvc := NewOutcomeService(matchRepo, memory.NewEventRepository(nil), logging.NewNop())
	service := NewSettlementService(betRepo, outcomeSvc, 105*time.Minute, logging.NewNop())
	return service, betRepo
}

func finishedMatch(homeGoals, awayGoals int) match.Match {
	return match.Match{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		KickoffAt: settlementKickoff,
		Status:    match.StatusFinished,
		HomeScore: &homeGoals,
		AwayScore: &awayGoals,
	}
}

func openBet(id, market, selection string, stake int64, odds float64) bet.Bet {
	return bet.Bet{
		ID:        id,
		UserID:    "user-1",
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		Market:    market,
		Selection: selection,
		Stake:     stake,
		Odds:      odds,
		Status:    bet.StatusOpen,
		PlacedAt:  settlementKickoff.Add(-time.Hour),
	}
}

func TestSettlementService_SettleOpen_1X2(t *testing.T) {
	service, betRepo := newSettlementFixture(t,
		[]match.Match{finishedMatch(2, 1)},
		[]bet.Bet{
			openBet("bet-1", bet.Market1X2, "1", 100, 2.5),
			openBet("bet-2", bet.Market1X2, "2", 100, 3.0),
		},
	)

	settled, err := service.SettleOpen(t.Context(), settlementKickoff.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, settled)

	won, _ := betRepo.Get("bet-1")
	assert.Equal(t, bet.StatusWon, won.Status)
	assert.Equal(t, int64(250), won.Payout)

	lost, _ := betRepo.Get("bet-2")
	assert.Equal(t, bet.StatusLost, lost.Status)
	assert.Zero(t, lost.Payout)

	assert.Equal(t, int64(250), betRepo.Balance("user-1"))
}

func TestSettlementService_SettleOpen_PayoutFloors(t *testing.T) {
	service, betRepo := newSettlementFixture(t,
		[]match.Match{finishedMatch(1, 0)},
		[]bet.Bet{openBet("bet-1", bet.Market1X2, "1", 33, 1.85)},
	)

	settled, err := service.SettleOpen(t.Context(), settlementKickoff.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	// 33 * 1.85 = 61.05 floors to 61.
	row, _ := betRepo.Get("bet-1")
	assert.Equal(t, int64(61), row.Payout)
}

func TestSettlementService_SettleOpen_Totals(t *testing.T) {
	cases := []struct {
		name       string
		homeGoals  int
		awayGoals  int
		selection  string
		wantStatus string
	}{
		{"over wins above line", 2, 1, "over_2.5", bet.StatusWon},
		{"over loses below line", 1, 1, "over_2.5", bet.StatusLost},
		{"under wins below line", 1, 0, "U25", bet.StatusWon},
		{"compact over form", 3, 1, "O35", bet.StatusWon},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service, betRepo := newSettlementFixture(t,
				[]match.Match{finishedMatch(tc.homeGoals, tc.awayGoals)},
				[]bet.Bet{openBet("bet-1", bet.MarketTotals, tc.selection, 100, 1.9)},
			)

			settled, err := service.SettleOpen(t.Context(), settlementKickoff.Add(2*time.Hour))
			require.NoError(t, err)
			require.Equal(t, 1, settled)

			row, _ := betRepo.Get("bet-1")
			assert.Equal(t, tc.wantStatus, row.Status)
		})
	}
}

func TestSettlementService_SettleOpen_TotalsExactLineStaysOpen(t *testing.T) {
	service, betRepo := newSettlementFixture(t,
		[]match.Match{finishedMatch(2, 1)},
		[]bet.Bet{openBet("bet-1", bet.MarketTotals, "over_3", 100, 1.9)},
	)

	settled, err := service.SettleOpen(t.Context(), settlementKickoff.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, settled)

	row, _ := betRepo.Get("bet-1")
	assert.Equal(t, bet.StatusOpen, row.Status)
}

func TestSettlementService_SettleOpen_UnresolvedMatchSkipsBets(t *testing.T) {
	// Finished status but no score and no events: outcome stays
	// unresolved and the 1x2 bet must not settle.
	unscored := match.Match{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		KickoffAt: settlementKickoff,
		Status:    match.StatusFinished,
	}
	service, betRepo := newSettlementFixture(t,
		[]match.Match{unscored},
		[]bet.Bet{openBet("bet-1", bet.Market1X2, "1", 100, 2.0)},
	)

	settled, err := service.SettleOpen(t.Context(), settlementKickoff.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, settled)

	row, _ := betRepo.Get("bet-1")
	assert.Equal(t, bet.StatusOpen, row.Status)
}

func TestSettlementService_SettleOpen_SpecialTimesOutToLoss(t *testing.T) {
	// No penalty was ever recorded. Before the nominal duration
	// elapses the bet waits; afterwards the market force-resolves to
	// "did not happen".
	unscored := match.Match{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		KickoffAt: settlementKickoff,
		Status:    match.StatusLive,
	}
	yes := openBet("bet-yes", bet.MarketPenalty, "yes", 100, 4.0)
	no := openBet("bet-no", bet.MarketRedcard, "no", 100, 1.2)

	service, betRepo := newSettlementFixture(t, []match.Match{unscored}, []bet.Bet{yes, no})

	settled, err := service.SettleOpen(t.Context(), settlementKickoff.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, settled, "specials must wait inside the match window")

	settled, err = service.SettleOpen(t.Context(), settlementKickoff.Add(106*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, settled)

	timedOut, _ := betRepo.Get("bet-yes")
	assert.Equal(t, bet.StatusLost, timedOut.Status)

	negative, _ := betRepo.Get("bet-no")
	assert.Equal(t, bet.StatusWon, negative.Status)
}

func TestSettlementService_SettleOpen_RecordedSpecialSettlesEarly(t *testing.T) {
	live := match.Match{
		HomeTeam:       "Arsenal",
		AwayTeam:       "Chelsea",
		KickoffAt:      settlementKickoff,
		Status:         match.StatusLive,
		HomeScore:      intPtr(1),
		AwayScore:      intPtr(0),
		PenaltyAwarded: boolPtr(true),
	}
	service, betRepo := newSettlementFixture(t,
		[]match.Match{live},
		[]bet.Bet{openBet("bet-1", bet.MarketPenalty, "yes", 100, 4.0)},
	)

	settled, err := service.SettleOpen(t.Context(), settlementKickoff.Add(20*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	row, _ := betRepo.Get("bet-1")
	assert.Equal(t, bet.StatusWon, row.Status)
	assert.Equal(t, int64(400), row.Payout)
}

func TestSettlementService_SettleOpen_BadSelectionStaysOpen(t *testing.T) {
	service, betRepo := newSettlementFixture(t,
		[]match.Match{finishedMatch(2, 1)},
		[]bet.Bet{openBet("bet-1", bet.Market1X2, "home", 100, 2.0)},
	)

	settled, err := service.SettleOpen(t.Context(), settlementKickoff.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, settled)

	row, _ := betRepo.Get("bet-1")
	assert.Equal(t, bet.StatusOpen, row.Status)
}

func TestSettlementService_SettleOpen_FutureKickoffNotDue(t *testing.T) {
	service, betRepo := newSettlementFixture(t,
		[]match.Match{finishedMatch(2, 1)},
		[]bet.Bet{openBet("bet-1", bet.Market1X2, "1", 100, 2.0)},
	)

	settled, err := service.SettleOpen(t.Context(), settlementKickoff.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, settled)

	row, _ := betRepo.Get("bet-1")
	assert.Equal(t, bet.StatusOpen, row.Status)
}
