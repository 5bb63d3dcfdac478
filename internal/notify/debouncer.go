package notify

import (
	"context"
	"sync"
	"time"

	"github.com/matchday-io/matchday/internal/platform/logging"
)

const DefaultWindow = 250 * time.Millisecond

// EventFieldPatch is the structured topic event whose payloads carry a
// nested "fields" map; repeated emits union that map instead of
// overwriting the whole payload.
const EventFieldPatch = "field_patch"

type pendingBuffer struct {
	event   string
	room    string
	payload map[string]any
	timer   *time.Timer
}

// Debouncer coalesces bursts of change events into bounded-rate
// deliveries. Each coalescing key holds at most one pending timer; a
// later event merges into the existing buffer without resetting the
// timer, so delivery latency stays bounded by the window. The flush
// detaches the buffer under the lock before emitting, so a merge
// racing the flush starts a fresh window instead of extending one
// already in flight.
type Debouncer struct {
	transport Broadcaster
	window    time.Duration
	logger    *logging.Logger

	mu      sync.Mutex
	pending map[string]*pendingBuffer
	closed  bool
}

func NewDebouncer(transport Broadcaster, window time.Duration, logger *logging.Logger) *Debouncer {
	if transport == nil {
		transport = NopBroadcaster{}
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Debouncer{
		transport: transport,
		window:    window,
		logger:    logger,
		pending:   make(map[string]*pendingBuffer),
	}
}

// NotifyPatch coalesces fine-grained field patches keyed by
// (entity, id, room). Later fields win per key within a window.
func (d *Debouncer) NotifyPatch(entity, id, room string, fields map[string]any) {
	if len(fields) == 0 {
		return
	}
	key := "patch|" + entity + "|" + id + "|" + room
	// Clone before buffering so a caller reusing its map cannot mutate
	// a pending payload, and later merges cannot write into the
	// caller's map.
	d.merge(key, "patch:"+entity, room, clonePayload(map[string]any{
		"entity": entity,
		"id":     id,
		"fields": fields,
	}))
}

// NotifyTopic coalesces coarse "data changed" events keyed by
// (topic, event). Priority events bypass coalescing entirely.
func (d *Debouncer) NotifyTopic(topic, event string, payload map[string]any, priority bool) {
	if priority {
		d.deliver(event, topic, clonePayload(payload))
		return
	}
	key := "topic|" + topic + "|" + event
	d.merge(key, event, topic, clonePayload(payload))
}

func (d *Debouncer) merge(key, event, room string, payload map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if buf, ok := d.pending[key]; ok {
		mergePayload(buf.payload, payload)
		return
	}

	buf := &pendingBuffer{event: event, room: room, payload: payload}
	buf.timer = time.AfterFunc(d.window, func() { d.flush(key) })
	d.pending[key] = buf
}

func (d *Debouncer) flush(key string) {
	d.mu.Lock()
	buf, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	d.mu.Unlock()
	if !ok {
		return
	}

	d.deliver(buf.event, buf.room, buf.payload)
}

func (d *Debouncer) deliver(event, room string, payload map[string]any) {
	// No retry queue: clients recover missed notifications from the
	// snapshot cache.
	if err := d.transport.Emit(context.Background(), event, payload, room); err != nil {
		d.logger.Warn("notification delivery failed", "event", event, "room", room, "error", err)
	}
}

// Close stops pending timers and flushes their buffers synchronously.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	remaining := d.pending
	d.pending = make(map[string]*pendingBuffer)
	d.mu.Unlock()

	for _, buf := range remaining {
		buf.timer.Stop()
		d.deliver(buf.event, buf.room, buf.payload)
	}
}

// mergePayload merges incoming over existing, last write wins, except
// the nested "fields" map of field-patch payloads which is unioned.
func mergePayload(existing, incoming map[string]any) {
	for k, v := range incoming {
		if k == "fields" {
			prev, okPrev := existing[k].(map[string]any)
			next, okNext := v.(map[string]any)
			if okPrev && okNext {
				for fk, fv := range next {
					prev[fk] = fv
				}
				continue
			}
		}
		existing[k] = v
	}
}

func clonePayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if nested, ok := v.(map[string]any); ok {
			inner := make(map[string]any, len(nested))
			for nk, nv := range nested {
				inner[nk] = nv
			}
			out[k] = inner
			continue
		}
		out[k] = v
	}
	return out
}
