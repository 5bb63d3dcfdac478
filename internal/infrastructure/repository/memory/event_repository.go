package memory

import (
	"context"
	"sync"

	"github.com/matchday-io/matchday/internal/domain/matchevent"
)

type EventRepository struct {
	mu   sync.RWMutex
	rows []matchevent.Event
}

func NewEventRepository(events []matchevent.Event) *EventRepository {
	return &EventRepository{rows: append([]matchevent.Event(nil), events...)}
}

func (r *EventRepository) Add(item matchevent.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, item)
}

func (r *EventRepository) ListByMatch(_ context.Context, home, away string) ([]matchevent.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []matchevent.Event
	for _, item := range r.rows {
		if item.HomeTeam == home && item.AwayTeam == away {
			out = append(out, item)
		}
	}
	return out, nil
}
