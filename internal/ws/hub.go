package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"easyorders/entity"
	"easyorders/internal/lib/sl"
)

const EventStatusChanged = "order_status_changed"

// Event is a message pushed to live subscribers.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub keeps the connected order panels and fans status changes out to them.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}

	mu  sync.RWMutex
	log *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
		log:        log.With(sl.Module("ws")),
	}
}

// Run is the hub loop; start it with go hub.Run().
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("subscriber connected", slog.Int64("user_id", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				h.log.With(sl.Err(err)).Error("encode event")
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow subscriber
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast queues a status change for every subscriber. It never blocks;
// when the queue is full the change is dropped.
func (h *Hub) Broadcast(change *entity.StatusChange) {
	payload, err := json.Marshal(change)
	if err != nil {
		h.log.With(sl.Err(err)).Error("encode status change")
		return
	}
	select {
	case h.broadcast <- Event{Type: EventStatusChanged, Payload: payload}:
	default:
		h.log.Warn("broadcast queue full, dropping event", slog.Int64("order_id", change.OrderID))
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
