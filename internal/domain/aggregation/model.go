package aggregation

import "time"

// State is the per-match idempotency ledger. Both flags are one-way
// latches: once true they are never reset, which bounds every
// statistic contribution to at most one application per match.
type State struct {
	HomeTeam      string
	AwayTeam      string
	LineupApplied bool
	EventsApplied bool
	UpdatedAt     time.Time
}

// TeamTableMark is the second, independent idempotency boundary: an
// existence marker recording that the team-scoped player table already
// absorbed this match. It is separate from the State latches because
// the team table aggregates by raw increments rather than latch-gated
// folds and can be retried independently.
type TeamTableMark struct {
	HomeTeam string
	AwayTeam string
	MarkedAt time.Time
}
