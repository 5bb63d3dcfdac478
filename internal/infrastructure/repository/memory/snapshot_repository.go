package memory

import (
	"context"
	"sync"
	"time"

	"github.com/matchday-io/matchday/internal/domain/snapshot"
)

type SnapshotRepository struct {
	mu   sync.RWMutex
	rows map[string]snapshot.Snapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{rows: make(map[string]snapshot.Snapshot)}
}

func (r *SnapshotRepository) Get(_ context.Context, key string) (snapshot.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.rows[key]
	if !ok {
		return snapshot.Snapshot{}, false, nil
	}
	out := snap
	out.Payload = append([]byte(nil), snap.Payload...)
	return out, true, nil
}

func (r *SnapshotRepository) Set(_ context.Context, key string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[key] = snapshot.Snapshot{
		Key:       key,
		Payload:   append([]byte(nil), payload...),
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}
