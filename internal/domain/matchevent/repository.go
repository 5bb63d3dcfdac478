package matchevent

import "context"

// Repository exposes match event reads.
type Repository interface {
	ListByMatch(ctx context.Context, home, away string) ([]Event, error)
}
