package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/domain/matchevent"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

// Outcome is the authoritative final result of a match, including the
// special-market occurrences bets can target.
type Outcome struct {
	HomeGoals int
	AwayGoals int
	Penalty   bool
	RedCard   bool
	// The recorded flags distinguish an explicit negative outcome from
	// a defaulted one; settlement needs the difference for its
	// timeout-to-loss policy.
	PenaltyRecorded bool
	RedCardRecorded bool
}

// Winner returns the 1x2 result encoding.
func (o Outcome) Winner() string {
	switch {
	case o.HomeGoals > o.AwayGoals:
		return "1"
	case o.HomeGoals < o.AwayGoals:
		return "2"
	default:
		return "x"
	}
}

func (o Outcome) TotalGoals() int {
	return o.HomeGoals + o.AwayGoals
}

// OutcomeService determines the final score for a match: the stored
// score record is primary, with a goal-event count as fallback. A
// successful fallback is persisted so later reads resolve from the
// score record directly.
type OutcomeService struct {
	matchRepo match.Repository
	eventRepo matchevent.Repository
	logger    *logging.Logger
}

func NewOutcomeService(matchRepo match.Repository, eventRepo matchevent.Repository, logger *logging.Logger) *OutcomeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &OutcomeService{
		matchRepo: matchRepo,
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// Resolve returns the final outcome for the pair, or resolved=false
// when no score is stored and no events exist to derive one from. It
// never guesses a result.
func (s *OutcomeService) Resolve(ctx context.Context, home, away string) (Outcome, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.Resolve")
	defer span.End()

	home = strings.TrimSpace(home)
	away = strings.TrimSpace(away)
	if home == "" || away == "" {
		return Outcome{}, false, fmt.Errorf("%w: home and away are required", ErrInvalidInput)
	}

	row, exists, err := s.matchRepo.GetByTeams(ctx, home, away)
	if err != nil {
		return Outcome{}, false, fmt.Errorf("get match for outcome: %w", err)
	}

	if exists && row.HasScore() {
		return s.withSpecials(ctx, home, away, row, Outcome{
			HomeGoals: *row.HomeScore,
			AwayGoals: *row.AwayScore,
		})
	}

	events, err := s.eventRepo.ListByMatch(ctx, home, away)
	if err != nil {
		return Outcome{}, false, fmt.Errorf("list events for outcome fallback: %w", err)
	}
	if len(events) == 0 {
		return Outcome{}, false, nil
	}

	out := Outcome{}
	for _, ev := range events {
		if ev.Kind != matchevent.KindGoal {
			continue
		}
		if matchevent.NormalizeSide(ev.Side) == matchevent.SideAway {
			out.AwayGoals++
			continue
		}
		out.HomeGoals++
	}

	if exists {
		recovered := row
		homeGoals, awayGoals := out.HomeGoals, out.AwayGoals
		recovered.HomeScore = &homeGoals
		recovered.AwayScore = &awayGoals
		if err := s.matchRepo.UpdateResult(ctx, recovered); err != nil {
			// Resolution still succeeded; only the write-back failed.
			s.logger.WarnContext(ctx, "persist recovered score failed",
				"home", home, "away", away, "error", err)
		} else {
			s.logger.InfoContext(ctx, "score recovered from events",
				"home", home, "away", away,
				"home_goals", out.HomeGoals, "away_goals", out.AwayGoals)
		}
	}

	return s.withSpecials(ctx, home, away, row, out)
}

func (s *OutcomeService) withSpecials(ctx context.Context, home, away string, row match.Match, out Outcome) (Outcome, bool, error) {
	if row.PenaltyAwarded != nil {
		out.Penalty = *row.PenaltyAwarded
		out.PenaltyRecorded = true
	}
	if row.RedCardShown != nil {
		out.RedCard = *row.RedCardShown
		out.RedCardRecorded = true
	}
	if !out.PenaltyRecorded || !out.RedCardRecorded {
		s.logger.DebugContext(ctx, "special markets unrecorded, defaulting negative",
			"home", home, "away", away)
	}
	return out, true, nil
}
