package notify

import "context"

// Broadcaster is the transport notifications are flushed to. Rooms
// scope delivery; an empty room broadcasts to every client.
type Broadcaster interface {
	Emit(ctx context.Context, event string, payload map[string]any, room string) error
}

// NopBroadcaster keeps the pipeline functional when no transport is
// configured; deliveries degrade to no-ops.
type NopBroadcaster struct{}

func (NopBroadcaster) Emit(context.Context, string, map[string]any, string) error { return nil }
