package services

import (
	"sync"
)

// Board event types
const (
	EventProjectStatusChanged = "project_status_changed"
	EventAssignmentCreated    = "assignment_created"
	EventAssignmentUpdated    = "assignment_updated"
	EventAssignmentRemoved    = "assignment_removed"
)

// BoardEvent is a real-time update pushed to open boards so they can
// re-synchronize after another operator's mutation.
type BoardEvent struct {
	Type      string `json:"type"`
	ProjectID uint   `json:"project_id"`
	UserID    uint   `json:"user_id,omitempty"`
	Status    string `json:"status,omitempty"`
	ActorID   uint   `json:"actor_id,omitempty"`
}

// SSEHub manages SSE client connections and event broadcasting
type SSEHub struct {
	clients map[string]chan BoardEvent
	mu      sync.RWMutex
}

// NewSSEHub creates a new SSE hub instance
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]chan BoardEvent),
	}
}

// Subscribe registers a new client and returns a channel for receiving events
func (h *SSEHub) Subscribe(clientID string) <-chan BoardEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Buffered so a slow reader does not block publishers
	ch := make(chan BoardEvent, 100)
	h.clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client from the hub
func (h *SSEHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients
func (h *SSEHub) Publish(event BoardEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		// Non-blocking send, drop the event if the client buffer is full
		select {
		case ch <- event:
		default:
		}
	}
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Global SSE Hub instance
var globalSSEHub *SSEHub
var sseHubOnce sync.Once

// GetSSEHub returns the global SSE hub singleton
func GetSSEHub() *SSEHub {
	sseHubOnce.Do(func() {
		globalSSEHub = NewSSEHub()
	})
	return globalSSEHub
}
