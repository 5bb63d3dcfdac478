package usecase

import (
	"context"
	"fmt"

	"github.com/matchday-io/matchday/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// WarmupService rebuilds every derived snapshot at startup so read
// paths never serve an empty cache after a deploy.
type WarmupService struct {
	tableSvc *TableService
	aggSvc   *AggregationService
	logger   *logging.Logger
}

func NewWarmupService(tableSvc *TableService, aggSvc *AggregationService, logger *logging.Logger) *WarmupService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WarmupService{tableSvc: tableSvc, aggSvc: aggSvc, logger: logger}
}

// WarmSnapshots rebuilds the schedule, league table and scorer board
// concurrently. Each rebuild is independent; the joined error reports
// whichever failed.
func (s *WarmupService) WarmSnapshots(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.WarmupService.WarmSnapshots")
	defer span.End()

	group := pool.New().WithContext(ctx).WithMaxGoroutines(3)
	group.Go(func(ctx context.Context) error {
		if err := s.tableSvc.RebuildSchedule(ctx); err != nil {
			return fmt.Errorf("warm schedule: %w", err)
		}
		return nil
	})
	group.Go(func(ctx context.Context) error {
		if err := s.tableSvc.RebuildLeagueTable(ctx); err != nil {
			return fmt.Errorf("warm league table: %w", err)
		}
		return nil
	})
	group.Go(func(ctx context.Context) error {
		if err := s.aggSvc.RebuildScorerBoard(ctx); err != nil {
			return fmt.Errorf("warm scorer board: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "snapshots warmed")
	return nil
}
