package match

import "context"

// Repository exposes canonical match persistence.
type Repository interface {
	GetByTeams(ctx context.Context, home, away string) (Match, bool, error)
	// ListByTeams returns every canonical row recorded for the pair;
	// legacy name-keyed data can map to more than one row.
	ListByTeams(ctx context.Context, home, away string) ([]Match, error)
	ListAll(ctx context.Context) ([]Match, error)
	ListByStatus(ctx context.Context, status string) ([]Match, error)
	UpdateResult(ctx context.Context, item Match) error
	UpdateSpecials(ctx context.Context, id int64, penaltyAwarded, redCardShown *bool) error
}
