package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/matchday-io/matchday/internal/platform/logging"
)

// Message is one delivered broadcast frame.
type Message struct {
	Event     string         `json:"event"`
	Room      string         `json:"room,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// Hub fans broadcast messages out to connected websocket clients. It
// implements notify.Broadcaster; an empty room reaches every client,
// otherwise only clients subscribed to that room receive the frame.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	done       chan struct{}
	closeOnce  sync.Once
	logger     *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the client set. Call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("ws client registered", "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("ws client unregistered", "total", total)

		case message := <-h.broadcast:
			frame, err := sonic.Marshal(message)
			if err != nil {
				h.logger.Error("ws marshal broadcast", "event", message.Event, "error", err)
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if !client.wantsRoom(message.Room) {
					continue
				}
				select {
				case client.send <- frame:
				default:
					// Slow consumer, drop it.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Emit queues a broadcast. It never blocks the caller; when the hub's
// buffer is full the frame is dropped and logged.
func (h *Hub) Emit(_ context.Context, event string, payload map[string]any, room string) error {
	message := Message{
		Event:     event,
		Room:      room,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	select {
	case h.broadcast <- message:
		return nil
	default:
		h.logger.Warn("ws broadcast buffer full, frame dropped", "event", event, "room", room)
		return nil
	}
}

// Close stops the hub loop and disconnects every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ServeHTTP upgrades the connection and attaches the client to the
// hub. Rooms come from the ?rooms= query parameter, comma separated.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	client := newClient(h, conn, r.URL.Query().Get("rooms"))
	h.register <- client

	go client.writePump()
	go client.readPump()
}
