// Package websocket pushes engine state events to browser subscribers over
// gorilla/websocket.
package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"sniper-dashboard/logging"
	"sniper-dashboard/models"
)

// Hub tracks connected subscribers and broadcasts state events to them.
type Hub struct {
	upgrader websocket.Upgrader
	clients  map[*Client]struct{}
	mu       sync.RWMutex
	closed   bool
	log      *logrus.Entry
}

// NewHub creates an empty hub. Any origin is accepted, matching the CORS
// policy of the HTTP API.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*Client]struct{}),
		log:     logging.WithComponent("ws"),
	}
}

// Name implements handlers.StateHandler.
func (h *Hub) Name() string { return "websocket" }

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and registers the subscriber. initial, when
// non-nil, is the first frame the subscriber receives.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, initial *models.StateEvent) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.WithError(err).Debug("WebSocket upgrade failed")
		return
	}

	client := newClient(uuid.NewString(), conn, h.log)
	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			client.enqueue(data)
		}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		client.Close()
		return
	}
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.WithFields(logrus.Fields{"client": client.id, "clients": total}).Info("WebSocket client connected")

	client.StartPing(pingInterval)
	go client.writePump()
	go client.readPump(func() { h.remove(client) })
}

// Handle implements handlers.StateHandler. Slow subscribers miss events
// rather than stall the publisher.
func (h *Hub) Handle(ev models.StateEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.enqueue(data) {
			h.log.WithFields(logrus.Fields{"client": client.id, "event": ev.Type}).Debug("Subscriber queue full, event dropped")
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for client := range clients {
		close(client.send)
		client.Close()
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	close(client.send)
	client.Close()
	h.log.WithFields(logrus.Fields{"client": client.id, "clients": total}).Info("WebSocket client disconnected")
}
