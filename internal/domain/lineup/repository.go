package lineup

import "context"

// Repository exposes lineup reads.
type Repository interface {
	ListByMatch(ctx context.Context, home, away string) ([]Entry, error)
}
