package ws

import (
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

func TestClient_WantsRoom(t *testing.T) {
	everything := newClient(nil, nil, "")
	if !everything.wantsRoom("results") || !everything.wantsRoom("") {
		t.Fatal("client with no room filter must receive every frame")
	}

	scoped := newClient(nil, nil, "results, tables")
	if !scoped.wantsRoom("results") || !scoped.wantsRoom("tables") {
		t.Fatal("client must receive frames for its subscribed rooms")
	}
	if scoped.wantsRoom("match:1") {
		t.Fatal("client must not receive frames for other rooms")
	}
	if !scoped.wantsRoom("") {
		t.Fatal("frames without a room reach every client")
	}
}

func TestHub_BroadcastFiltersByRoom(t *testing.T) {
	hub := NewHub(logging.NewNop())
	go hub.Run()
	t.Cleanup(hub.Close)

	resultsClient := newClient(hub, nil, "results")
	tablesClient := newClient(hub, nil, "tables")
	hub.register <- resultsClient
	hub.register <- tablesClient

	if err := hub.Emit(t.Context(), "results_changed", map[string]any{"home": "Arsenal"}, "results"); err != nil {
		t.Fatalf("emit: %v", err)
	}

	select {
	case frame := <-resultsClient.send:
		var message Message
		if err := sonic.Unmarshal(frame, &message); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if message.Event != "results_changed" || message.Room != "results" {
			t.Fatalf("unexpected frame: %+v", message)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscribed client never received the frame")
	}

	select {
	case frame := <-tablesClient.send:
		t.Fatalf("tables client must not receive results frame: %s", frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_EmitNeverBlocks(t *testing.T) {
	// No Run loop draining the buffer; every Emit past the buffer
	// size must drop instead of blocking.
	hub := NewHub(logging.NewNop())
	t.Cleanup(hub.Close)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 300; i++ {
			_ = hub.Emit(t.Context(), "results_changed", nil, "")
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit blocked on a full broadcast buffer")
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(logging.NewNop())
	go hub.Run()

	client := newClient(hub, nil, "")
	hub.register <- client

	hub.Close()

	select {
	case _, open := <-client.send:
		if open {
			t.Fatal("expected send channel to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client send channel never closed")
	}
}
