package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matchday-io/matchday/internal/domain/bet"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

const defaultMatchDuration = 105 * time.Minute

// SettlementService resolves open wagers against concluded matches.
// Settlement is all-or-nothing per invocation: every touched bet and
// wallet credit commits in one batch, or none do.
type SettlementService struct {
	betRepo       bet.Repository
	outcomeSvc    *OutcomeService
	matchDuration time.Duration
	logger        *logging.Logger
}

func NewSettlementService(betRepo bet.Repository, outcomeSvc *OutcomeService, matchDuration time.Duration, logger *logging.Logger) *SettlementService {
	if matchDuration <= 0 {
		matchDuration = defaultMatchDuration
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SettlementService{
		betRepo:       betRepo,
		outcomeSvc:    outcomeSvc,
		matchDuration: matchDuration,
		logger:        logger,
	}
}

// SettleOpen evaluates every open bet whose match has kicked off.
// Bets the current data cannot decide stay open for a later sweep.
func (s *SettlementService) SettleOpen(ctx context.Context, now time.Time) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleOpen")
	defer span.End()

	open, err := s.betRepo.ListOpenDueBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list open bets: %w", err)
	}
	if len(open) == 0 {
		return 0, nil
	}

	outcomes := make(map[string]*Outcome)
	settlements := make([]bet.Settlement, 0, len(open))

	for _, item := range open {
		outcome, err := s.outcomeFor(ctx, outcomes, item.HomeTeam, item.AwayTeam)
		if err != nil {
			s.logger.WarnContext(ctx, "outcome lookup failed, bet skipped",
				"bet", item.ID, "home", item.HomeTeam, "away", item.AwayTeam, "error", err)
			continue
		}

		won, decided := s.evaluate(ctx, item, outcome, now)
		if !decided {
			continue
		}

		settled := bet.Settlement{BetID: item.ID, UserID: item.UserID, Status: bet.StatusLost}
		if won {
			settled.Status = bet.StatusWon
			settled.Payout = bet.WinPayout(item.Stake, item.Odds)
		}
		settlements = append(settlements, settled)
	}

	if len(settlements) == 0 {
		return 0, nil
	}

	batchRef := uuid.NewString()
	if err := s.betRepo.SettleBatch(ctx, batchRef, settlements); err != nil {
		s.logger.ErrorContext(ctx, "settlement batch rolled back",
			"batch", batchRef, "bets", len(settlements), "error", err)
		return 0, fmt.Errorf("commit settlement batch: %w", err)
	}

	s.logger.InfoContext(ctx, "settlement batch committed",
		"batch", batchRef, "bets", len(settlements))
	return len(settlements), nil
}

// outcomeFor memoizes outcome resolution per match pair within one
// sweep. A nil entry records a pair already known to be unresolved.
func (s *SettlementService) outcomeFor(ctx context.Context, cache map[string]*Outcome, home, away string) (*Outcome, error) {
	key := home + "|" + away
	if cached, ok := cache[key]; ok {
		return cached, nil
	}

	outcome, resolved, err := s.outcomeSvc.Resolve(ctx, home, away)
	if err != nil {
		return nil, err
	}
	if !resolved {
		cache[key] = nil
		return nil, nil
	}
	cache[key] = &outcome
	return &outcome, nil
}

func (s *SettlementService) evaluate(ctx context.Context, item bet.Bet, outcome *Outcome, now time.Time) (won, decided bool) {
	switch item.Market {
	case bet.Market1X2:
		return s.evaluate1X2(ctx, item, outcome)
	case bet.MarketTotals:
		return s.evaluateTotals(ctx, item, outcome)
	case bet.MarketPenalty, bet.MarketRedcard:
		return s.evaluateSpecial(ctx, item, outcome, now)
	default:
		s.logger.WarnContext(ctx, "unknown market, bet skipped", "bet", item.ID, "market", item.Market)
		return false, false
	}
}

func (s *SettlementService) evaluate1X2(ctx context.Context, item bet.Bet, outcome *Outcome) (bool, bool) {
	if outcome == nil {
		return false, false
	}
	selection, err := bet.Parse1X2Selection(item.Selection)
	if err != nil {
		s.logger.WarnContext(ctx, "bad 1x2 selection, bet skipped", "bet", item.ID, "selection", item.Selection)
		return false, false
	}
	return selection == outcome.Winner(), true
}

// evaluateTotals settles strict over/under comparisons. A total that
// lands exactly on an integer line is undecidable under current policy
// and the bet stays open.
func (s *SettlementService) evaluateTotals(ctx context.Context, item bet.Bet, outcome *Outcome) (bool, bool) {
	if outcome == nil {
		return false, false
	}
	selection, err := bet.ParseTotalsSelection(item.Selection)
	if err != nil {
		s.logger.WarnContext(ctx, "bad totals selection, bet skipped", "bet", item.ID, "selection", item.Selection)
		return false, false
	}

	total := float64(outcome.TotalGoals())
	if total == selection.Line {
		return false, false
	}
	if selection.Over {
		return total > selection.Line, true
	}
	return total < selection.Line, true
}

// evaluateSpecial settles penalty/redcard markets. When the occurrence
// was never recorded and the match's nominal duration has elapsed, the
// market force-resolves to a negative outcome: absence of data after
// the window is treated as non-occurrence, not as an error.
func (s *SettlementService) evaluateSpecial(ctx context.Context, item bet.Bet, outcome *Outcome, now time.Time) (bool, bool) {
	wantYes, err := bet.ParseYesNoSelection(item.Selection)
	if err != nil {
		s.logger.WarnContext(ctx, "bad special selection, bet skipped", "bet", item.ID, "selection", item.Selection)
		return false, false
	}

	occurred, recorded := false, false
	if outcome != nil {
		if item.Market == bet.MarketPenalty {
			occurred, recorded = outcome.Penalty, outcome.PenaltyRecorded
		} else {
			occurred, recorded = outcome.RedCard, outcome.RedCardRecorded
		}
	}

	if !recorded {
		if item.KickoffAt.Add(s.matchDuration).After(now) {
			return false, false
		}
		s.logger.InfoContext(ctx, "special market timed out to negative outcome",
			"bet", item.ID, "market", item.Market)
		occurred = false
	}

	return wantYes == occurred, true
}
