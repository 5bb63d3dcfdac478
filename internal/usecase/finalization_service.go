package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/notify"
	"github.com/matchday-io/matchday/internal/platform/cache"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

// StatsIntegrator pushes finalized match statistics into a downstream
// consumer outside this service's schema. Implementations are
// best-effort; the orchestrator logs a failure and moves on.
type StatsIntegrator interface {
	PushMatchStats(ctx context.Context, home, away string, outcome Outcome) error
}

// NopStatsIntegrator ignores every push.
type NopStatsIntegrator struct{}

func (NopStatsIntegrator) PushMatchStats(context.Context, string, string, Outcome) error {
	return nil
}

// StepResult records one orchestrator step's fate. Err is nil when the
// step ran clean; Skipped marks steps not applicable to this call.
type StepResult struct {
	Step    string
	Skipped bool
	Err     error
}

// Report is the full step-by-step account of one finalization run.
type Report struct {
	Home  string
	Away  string
	Steps []StepResult
}

// Failed lists the steps that errored.
func (r Report) Failed() []StepResult {
	var out []StepResult
	for _, step := range r.Steps {
		if step.Err != nil {
			out = append(out, step)
		}
	}
	return out
}

// FinalizationService sequences everything that has to happen when a
// match reaches a terminal state. Steps run in order but fail
// independently; an error in one step is recorded and the rest still
// run, since every effect behind a step is idempotent and a later
// re-invocation converges the pieces that failed.
type FinalizationService struct {
	matchRepo     match.Repository
	outcomeSvc    *OutcomeService
	settlementSvc *SettlementService
	aggSvc        *AggregationService
	tableSvc      *TableService
	integrator    StatsIntegrator
	caches        *cache.Store
	notifier      *notify.Debouncer
	logger        *logging.Logger
	now           func() time.Time
}

func NewFinalizationService(
	matchRepo match.Repository,
	outcomeSvc *OutcomeService,
	settlementSvc *SettlementService,
	aggSvc *AggregationService,
	tableSvc *TableService,
	integrator StatsIntegrator,
	caches *cache.Store,
	notifier *notify.Debouncer,
	logger *logging.Logger,
) *FinalizationService {
	if integrator == nil {
		integrator = NopStatsIntegrator{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FinalizationService{
		matchRepo:     matchRepo,
		outcomeSvc:    outcomeSvc,
		settlementSvc: settlementSvc,
		aggSvc:        aggSvc,
		tableSvc:      tableSvc,
		integrator:    integrator,
		caches:        caches,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
	}
}

// Finalize runs the full pipeline for one match. It never returns an
// error: every step's outcome lands in the Report, and the caller
// decides whether a partial run warrants a retry.
func (s *FinalizationService) Finalize(ctx context.Context, home, away string, settleBets bool) Report {
	ctx, span := startUsecaseSpan(ctx, "usecase.FinalizationService.Finalize")
	defer span.End()

	home = strings.TrimSpace(home)
	away = strings.TrimSpace(away)
	report := Report{Home: home, Away: away}

	run := func(name string, fn func(context.Context) error) {
		err := fn(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "finalization step failed",
				"step", name, "home", home, "away", away, "error", err)
		}
		report.Steps = append(report.Steps, StepResult{Step: name, Err: err})
	}
	skip := func(name string) {
		report.Steps = append(report.Steps, StepResult{Step: name, Skipped: true})
	}

	var (
		outcome  Outcome
		resolved bool
	)

	run("resolve_outcome", func(ctx context.Context) error {
		var err error
		outcome, resolved, err = s.outcomeSvc.Resolve(ctx, home, away)
		if err != nil {
			return err
		}
		if !resolved {
			return fmt.Errorf("%w: no score and no events for %s vs %s", ErrUnresolved, home, away)
		}
		return nil
	})

	canonical, haveCanonical := match.Match{}, false

	if resolved {
		run("upsert_results", func(ctx context.Context) error {
			row, exists, err := s.matchRepo.GetByTeams(ctx, home, away)
			if err != nil {
				return fmt.Errorf("load match for results: %w", err)
			}
			if !exists {
				row = match.Match{HomeTeam: home, AwayTeam: away}
			}
			if err := s.tableSvc.UpsertResult(ctx, row, outcome); err != nil {
				return err
			}
			s.caches.Invalidate(ctx, "snapshot", "results")
			s.notifier.NotifyTopic("results", "results_changed", map[string]any{
				"home": home, "away": away,
			}, false)
			return nil
		})

		run("mirror_canonical", func(ctx context.Context) error {
			row, err := s.canonicalRow(ctx, home, away)
			if err != nil {
				return err
			}
			canonical, haveCanonical = row, true
			hg, ag := outcome.HomeGoals, outcome.AwayGoals
			row.HomeScore, row.AwayScore = &hg, &ag
			row.Status = match.StatusFinished
			if row.FinishedAt == nil {
				finished := s.now().UTC()
				row.FinishedAt = &finished
			}
			if err := s.matchRepo.UpdateResult(ctx, row); err != nil {
				return fmt.Errorf("update canonical result: %w", err)
			}
			s.notifier.NotifyPatch("match", fmt.Sprintf("%d", row.ID), "", map[string]any{
				"status":     row.Status,
				"home_score": hg,
				"away_score": ag,
			})
			return nil
		})

		run("autofix_specials", func(ctx context.Context) error {
			if !haveCanonical {
				return fmt.Errorf("%w: no canonical row to fix", ErrNotFound)
			}
			if canonical.PenaltyAwarded != nil && canonical.RedCardShown != nil {
				return nil
			}
			negative := false
			penalty, redCard := canonical.PenaltyAwarded, canonical.RedCardShown
			if penalty == nil {
				penalty = &negative
			}
			if redCard == nil {
				redCard = &negative
			}
			s.logger.InfoContext(ctx, "defaulting unrecorded special fields",
				"match_id", canonical.ID, "home", home, "away", away)
			return s.matchRepo.UpdateSpecials(ctx, canonical.ID, penalty, redCard)
		})
	} else {
		skip("upsert_results")
		skip("mirror_canonical")
		skip("autofix_specials")
	}

	if settleBets {
		run("settle_bets", func(ctx context.Context) error {
			_, err := s.settlementSvc.SettleOpen(ctx, s.now())
			return err
		})
	} else {
		skip("settle_bets")
	}

	if resolved {
		run("stats_integration", func(ctx context.Context) error {
			return s.integrator.PushMatchStats(ctx, home, away, outcome)
		})
	} else {
		skip("stats_integration")
	}

	run("aggregate_stats", func(ctx context.Context) error {
		return s.aggSvc.Apply(ctx, home, away)
	})

	run("rebuild_schedule", func(ctx context.Context) error {
		if err := s.tableSvc.RebuildSchedule(ctx); err != nil {
			return err
		}
		s.caches.Invalidate(ctx, "snapshot", "schedule")
		return nil
	})

	run("rebuild_league_table", func(ctx context.Context) error {
		if err := s.tableSvc.RebuildLeagueTable(ctx); err != nil {
			return err
		}
		s.caches.Invalidate(ctx, "snapshot", "league-table")
		s.caches.Invalidate(ctx, "snapshot", "stats-table")
		s.notifier.NotifyTopic("tables", "tables_changed", map[string]any{
			"home": home, "away": away,
		}, false)
		return nil
	})

	return report
}

// canonicalRow picks the best canonical record when legacy name-keyed
// data maps the pair to several rows. The ranking prefers the row whose
// kickoff is closest to now, breaks ties by status (live before
// scheduled before the rest), then takes the highest id.
func (s *FinalizationService) canonicalRow(ctx context.Context, home, away string) (match.Match, error) {
	rows, err := s.matchRepo.ListByTeams(ctx, home, away)
	if err != nil {
		return match.Match{}, fmt.Errorf("list canonical rows: %w", err)
	}
	if len(rows) == 0 {
		return match.Match{}, fmt.Errorf("%w: no canonical match for %s vs %s", ErrNotFound, home, away)
	}
	if len(rows) == 1 {
		return rows[0], nil
	}

	s.logger.WarnContext(ctx, "multiple canonical rows for team pair",
		"home", home, "away", away, "count", len(rows))

	now := s.now()
	best := rows[0]
	bestDist := kickoffDistance(best, now)
	for _, row := range rows[1:] {
		dist := kickoffDistance(row, now)
		switch {
		case dist < bestDist:
		case dist == bestDist && statusRank(row) < statusRank(best):
		case dist == bestDist && statusRank(row) == statusRank(best) && row.ID > best.ID:
		default:
			continue
		}
		best, bestDist = row, dist
	}
	return best, nil
}

func kickoffDistance(m match.Match, now time.Time) time.Duration {
	return time.Duration(math.Abs(float64(now.Sub(m.KickoffAt))))
}

func statusRank(m match.Match) int {
	return match.StatusPriority(match.NormalizeStatus(m.Status))
}
