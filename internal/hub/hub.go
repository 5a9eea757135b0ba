// Package hub fans gamepad frames out to WebSocket clients, each of which
// watches one player slot.
package hub

import (
	"context"
	"log/slog"
	"sync"
)

// Hub manages WebSocket clients and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Register adds a new client to the hub. The client can be sent to as soon
// as Register returns. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return false
	default:
	}
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected", "total", n)
	return true
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send queues msg for one client. It reports false if the client is no
// longer registered or its buffer is full.
func (h *Hub) Send(c *Client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[c] {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// BroadcastToPlayer sends a message to all clients watching player.
// Clients whose send buffer is full are dropped.
func (h *Hub) BroadcastToPlayer(msg []byte, player int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.Player() != player {
			continue
		}
		select {
		case client.send <- msg:
		default:
			go h.Unregister(client)
		}
	}
}

// Run is the hub's main loop. It closes every client's send channel when ctx
// is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client disconnected", "total", n)

		case <-ctx.Done():
			h.mu.Lock()
			close(h.done)
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}
