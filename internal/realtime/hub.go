package realtime

import (
	"encoding/json"
	"sync"
)

// Event describes one store mutation observed by the server.
type Event struct {
	Type string `json:"type"` // set, delete, lrem, rpush, incr, decr
	Key  string `json:"key"`
}

// Client represents a single websocket client connection.
// We keep it minimal here; the actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active subscribers and fans mutation events out to
// them. Each server owns its own hub; it is not a process singleton.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[Client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[Client]struct{})}
}

// Subscribe adds a client.
func (h *Hub) Subscribe(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[client] = struct{}{}
}

// Unsubscribe removes a client.
func (h *Hub) Unsubscribe(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, client)
}

// Broadcast sends the event to every subscriber. Clients whose send
// fails are dropped by their own reader loops, not here.
func (h *Hub) Broadcast(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subscribers {
		_ = c.Send(message)
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
