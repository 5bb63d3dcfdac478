package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matchday-io/matchday/internal/platform/logging"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	event   string
	room    string
	payload map[string]any
}

func (b *recordingBroadcaster) Emit(_ context.Context, event string, payload map[string]any, room string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{event: event, room: room, payload: payload})
	return nil
}

func (b *recordingBroadcaster) snapshot() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedEvent, len(b.events))
	copy(out, b.events)
	return out
}

func waitForEvents(t *testing.T, b *recordingBroadcaster, want int) []recordedEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if events := b.snapshot(); len(events) >= want {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, have %d", want, len(b.snapshot()))
	return nil
}

func TestDebouncer_CoalescesBurstIntoOneDelivery(t *testing.T) {
	transport := &recordingBroadcaster{}
	d := NewDebouncer(transport, 30*time.Millisecond, logging.NewNop())
	defer d.Close()

	for i := 0; i < 10; i++ {
		d.NotifyTopic("tables", "tables_changed", map[string]any{"n": i}, false)
	}

	events := waitForEvents(t, transport, 1)
	if len(events) != 1 {
		t.Fatalf("expected one coalesced delivery, got %d", len(events))
	}
	if events[0].event != "tables_changed" || events[0].room != "tables" {
		t.Fatalf("unexpected delivery: %+v", events[0])
	}
	// Last write wins within the window.
	if events[0].payload["n"] != 9 {
		t.Fatalf("expected payload from the last emit, got %v", events[0].payload["n"])
	}
}

func TestDebouncer_PatchesUnionFields(t *testing.T) {
	transport := &recordingBroadcaster{}
	d := NewDebouncer(transport, 30*time.Millisecond, logging.NewNop())
	defer d.Close()

	d.NotifyPatch("match", "42", "", map[string]any{"status": "FINISHED"})
	d.NotifyPatch("match", "42", "", map[string]any{"home_score": 2})

	events := waitForEvents(t, transport, 1)
	if len(events) != 1 {
		t.Fatalf("expected one merged patch, got %d", len(events))
	}
	fields, ok := events[0].payload["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected fields map, got %T", events[0].payload["fields"])
	}
	if fields["status"] != "FINISHED" || fields["home_score"] != 2 {
		t.Fatalf("expected unioned fields, got %v", fields)
	}
}

func TestDebouncer_PatchBuffersDetachedFromCallerMap(t *testing.T) {
	transport := &recordingBroadcaster{}
	d := NewDebouncer(transport, 30*time.Millisecond, logging.NewNop())
	defer d.Close()

	fields := map[string]any{"status": "FINISHED"}
	d.NotifyPatch("match", "42", "", fields)

	// Mutating the caller's map after handoff must not leak into the
	// pending buffer, and a later merge must not write back into it.
	fields["status"] = "LIVE"
	d.NotifyPatch("match", "42", "", map[string]any{"home_score": 2})

	events := waitForEvents(t, transport, 1)
	delivered, ok := events[0].payload["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected fields map, got %T", events[0].payload["fields"])
	}
	if delivered["status"] != "FINISHED" {
		t.Fatalf("caller mutation leaked into delivery: %v", delivered)
	}
	if _, ok := fields["home_score"]; ok {
		t.Fatalf("merge wrote into the caller's map: %v", fields)
	}
}

func TestDebouncer_DistinctKeysDeliverSeparately(t *testing.T) {
	transport := &recordingBroadcaster{}
	d := NewDebouncer(transport, 20*time.Millisecond, logging.NewNop())
	defer d.Close()

	d.NotifyPatch("match", "1", "", map[string]any{"status": "FINISHED"})
	d.NotifyPatch("match", "2", "", map[string]any{"status": "FINISHED"})

	events := waitForEvents(t, transport, 2)
	if len(events) != 2 {
		t.Fatalf("expected two deliveries, got %d", len(events))
	}
}

func TestDebouncer_PriorityBypassesWindow(t *testing.T) {
	transport := &recordingBroadcaster{}
	d := NewDebouncer(transport, time.Hour, logging.NewNop())
	defer d.Close()

	d.NotifyTopic("system", "maintenance", map[string]any{"until": "soon"}, true)

	events := transport.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected synchronous priority delivery, got %d", len(events))
	}
	if events[0].event != "maintenance" {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}

func TestDebouncer_CloseFlushesPending(t *testing.T) {
	transport := &recordingBroadcaster{}
	d := NewDebouncer(transport, time.Hour, logging.NewNop())

	d.NotifyTopic("tables", "tables_changed", map[string]any{"home": "Arsenal"}, false)
	d.Close()

	events := transport.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected flush on close, got %d deliveries", len(events))
	}

	// After close new events are dropped.
	d.NotifyTopic("tables", "tables_changed", nil, false)
	if len(transport.snapshot()) != 1 {
		t.Fatal("expected no deliveries after close")
	}
}
