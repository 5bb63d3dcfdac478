package aggregation

import (
	"context"

	"github.com/matchday-io/matchday/internal/domain/playerstats"
)

// Repository persists idempotency markers together with the counter
// increments they guard. Each Apply* operation claims its marker and
// writes the increments in a single atomic store operation; when the
// marker is already claimed it reports false and writes nothing, so a
// replay or a concurrent finalization can never double count.
type Repository interface {
	GetState(ctx context.Context, home, away string) (State, bool, error)
	// EnsureState creates the ledger row lazily on first finalization.
	// Apply* callers are expected to have ensured the row exists.
	EnsureState(ctx context.Context, home, away string) (State, error)
	ApplyLineupIncrements(ctx context.Context, home, away string, items []playerstats.Increment) (bool, error)
	ApplyEventIncrements(ctx context.Context, home, away string, items []playerstats.Increment) (bool, error)
	ListIncomplete(ctx context.Context) ([]State, error)

	HasTeamTableMark(ctx context.Context, home, away string) (bool, error)
	// ApplyTeamIncrements claims the team table mark and feeds the
	// team-scoped counters under the same atomicity rule.
	ApplyTeamIncrements(ctx context.Context, home, away string, items []playerstats.Increment) (bool, error)
}
