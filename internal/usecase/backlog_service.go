package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matchday-io/matchday/internal/domain/aggregation"
	"github.com/matchday-io/matchday/internal/domain/match"
	"github.com/matchday-io/matchday/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
)

const defaultBacklogWorkers = 4

// BacklogService sweeps finished matches whose aggregation never
// completed, usually after a crash mid-finalization, and replays the
// pipeline for each. Replay is safe because every finalization step is
// idempotent.
type BacklogService struct {
	matchRepo matchLister
	aggRepo   aggregation.Repository
	finalizer backlogFinalizer
	workers   int
	logger    *logging.Logger
}

type matchLister interface {
	ListByStatus(ctx context.Context, status string) ([]match.Match, error)
}

type backlogFinalizer interface {
	Finalize(ctx context.Context, home, away string, settleBets bool) Report
}

func NewBacklogService(
	matchRepo match.Repository,
	aggRepo aggregation.Repository,
	finalizer *FinalizationService,
	logger *logging.Logger,
) *BacklogService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BacklogService{
		matchRepo: matchRepo,
		aggRepo:   aggRepo,
		finalizer: finalizer,
		workers:   defaultBacklogWorkers,
		logger:    logger,
	}
}

// SetWorkers overrides the replay pool size.
func (s *BacklogService) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// FinalizeBacklog replays finalization for every finished match with a
// pending latch. Matches run concurrently on a bounded worker pool;
// the returned count is how many matches were replayed.
func (s *BacklogService) FinalizeBacklog(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BacklogService.FinalizeBacklog")
	defer span.End()

	incomplete, err := s.aggRepo.ListIncomplete(ctx)
	if err != nil {
		return 0, fmt.Errorf("list incomplete aggregation states: %w", err)
	}
	finished, err := s.matchRepo.ListByStatus(ctx, match.StatusFinished)
	if err != nil {
		return 0, fmt.Errorf("list finished matches: %w", err)
	}

	pending := make(map[string]struct{}, len(incomplete))
	for _, state := range incomplete {
		pending[state.HomeTeam+"|"+state.AwayTeam] = struct{}{}
	}

	var targets []match.Match
	for _, m := range finished {
		state, exists, err := s.aggRepo.GetState(ctx, m.HomeTeam, m.AwayTeam)
		if err != nil {
			s.logger.WarnContext(ctx, "backlog state lookup failed",
				"home", m.HomeTeam, "away", m.AwayTeam, "error", err)
			continue
		}
		if !exists || !state.LineupApplied || !state.EventsApplied {
			targets = append(targets, m)
			continue
		}
		if _, listed := pending[m.HomeTeam+"|"+m.AwayTeam]; listed {
			targets = append(targets, m)
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(s.workers, ants.WithExpiryDuration(time.Minute))
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, target := range targets {
		m := target
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			report := s.finalizer.Finalize(ctx, m.HomeTeam, m.AwayTeam, false)
			if failed := report.Failed(); len(failed) > 0 {
				s.logger.WarnContext(ctx, "backlog replay finished with failed steps",
					"home", m.HomeTeam, "away", m.AwayTeam, "failed_steps", len(failed))
			}
		})
		if submitErr != nil {
			wg.Done()
			s.logger.ErrorContext(ctx, "backlog submit failed",
				"home", m.HomeTeam, "away", m.AwayTeam, "error", submitErr)
		}
	}
	wg.Wait()

	return len(targets), nil
}
