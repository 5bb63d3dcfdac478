package memory

import (
	"time"

	"github.com/matchday-io/matchday/internal/domain/bet"
	"github.com/matchday-io/matchday/internal/domain/lineup"
	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/domain/matchevent"
)

const seedTournament = "premier-league"

var seedKickoff = time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

// SeedMatches returns a small round of fixtures for the DB-less local
// mode: one match ready to finalize, one live, one still scheduled.
func SeedMatches() []match.Match {
	finishedHome, finishedAway := 2, 1
	return []match.Match{
		{
			HomeTeam:   "Arsenal",
			AwayTeam:   "Chelsea",
			HomeTeamID: "ars",
			AwayTeamID: "che",
			Tournament: seedTournament,
			KickoffAt:  seedKickoff,
			Status:     match.StatusFinished,
			HomeScore:  &finishedHome,
			AwayScore:  &finishedAway,
		},
		{
			HomeTeam:   "Liverpool",
			AwayTeam:   "Everton",
			HomeTeamID: "liv",
			AwayTeamID: "eve",
			Tournament: seedTournament,
			KickoffAt:  seedKickoff.Add(2 * time.Hour),
			Status:     match.StatusLive,
		},
		{
			HomeTeam:   "Newcastle",
			AwayTeam:   "Brighton",
			HomeTeamID: "new",
			AwayTeamID: "bha",
			Tournament: seedTournament,
			KickoffAt:  seedKickoff.Add(24 * time.Hour),
			Status:     match.StatusScheduled,
		},
	}
}

func SeedLineups() []lineup.Entry {
	return []lineup.Entry{
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", TeamID: "ars", PlayerID: "ars-07", PlayerName: "Bukayo Saka"},
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", TeamID: "ars", PlayerID: "ars-08", PlayerName: "Martin Odegaard"},
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", TeamID: "che", PlayerID: "che-10", PlayerName: "Cole Palmer"},
	}
}

func SeedEvents() []matchevent.Event {
	return []matchevent.Event{
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kind: matchevent.KindGoal, Side: "home", TeamID: "ars", PlayerID: "ars-07", PlayerName: "Bukayo Saka", Minute: 23},
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kind: matchevent.KindGoal, Side: "home", TeamID: "ars", PlayerID: "ars-08", PlayerName: "Martin Odegaard", Minute: 58},
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kind: matchevent.KindGoal, Side: "away", TeamID: "che", PlayerID: "che-10", PlayerName: "Cole Palmer", Minute: 71},
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kind: matchevent.KindYellow, TeamID: "che", PlayerID: "che-10", PlayerName: "Cole Palmer", Minute: 84},
	}
}

func SeedBets() []bet.Bet {
	return []bet.Bet{
		{
			ID:        "seed-bet-01",
			UserID:    "demo-user",
			HomeTeam:  "Arsenal",
			AwayTeam:  "Chelsea",
			Market:    bet.Market1X2,
			Selection: "1",
			Stake:     100,
			Odds:      2.1,
			Status:    bet.StatusOpen,
			PlacedAt:  seedKickoff.Add(-time.Hour),
		},
		{
			ID:        "seed-bet-02",
			UserID:    "demo-user",
			HomeTeam:  "Arsenal",
			AwayTeam:  "Chelsea",
			Market:    bet.MarketTotals,
			Selection: "over_2.5",
			Stake:     50,
			Odds:      1.9,
			Status:    bet.StatusOpen,
			PlacedAt:  seedKickoff.Add(-time.Hour),
		},
		{
			ID:        "seed-bet-03",
			UserID:    "demo-user",
			HomeTeam:  "Newcastle",
			AwayTeam:  "Brighton",
			Market:    bet.Market1X2,
			Selection: "x",
			Stake:     75,
			Odds:      3.4,
			Status:    bet.StatusOpen,
			PlacedAt:  seedKickoff.Add(-30 * time.Minute),
		},
	}
}
