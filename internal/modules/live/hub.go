package live

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans committed-upload notifications out to admin dashboards watching
// an event. Connections are grouped per event; a dead connection is dropped
// on its first failed write.
type Hub struct {
	mutex sync.RWMutex
	conns map[string]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]bool),
	}
}

func (h *Hub) Subscribe(eventID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.conns[eventID] == nil {
		h.conns[eventID] = make(map[*websocket.Conn]bool)
	}
	h.conns[eventID][conn] = true
}

func (h *Hub) Unsubscribe(eventID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if set, exists := h.conns[eventID]; exists {
		if set[conn] {
			_ = conn.Close()
			delete(set, conn)
		}
		if len(set) == 0 {
			delete(h.conns, eventID)
		}
	}
}

// Broadcast sends a JSON message to every watcher of an event.
func (h *Hub) Broadcast(eventID string, message interface{}) {
	h.mutex.RLock()
	set := h.conns[eventID]
	targets := make([]*websocket.Conn, 0, len(set))
	for conn := range set {
		targets = append(targets, conn)
	}
	h.mutex.RUnlock()

	for _, conn := range targets {
		if err := conn.WriteJSON(message); err != nil {
			h.Unsubscribe(eventID, conn)
		}
	}
}

func (h *Hub) WatcherCount(eventID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.conns[eventID])
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for eventID, set := range h.conns {
		for conn := range set {
			_ = conn.Close()
		}
		delete(h.conns, eventID)
	}
}
