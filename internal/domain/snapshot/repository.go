package snapshot

import "context"

// Store is the key-addressed snapshot cache. Set replaces the whole
// payload under single-key write atomicity.
type Store interface {
	Get(ctx context.Context, key string) (Snapshot, bool, error)
	Set(ctx context.Context, key string, payload []byte) error
}
