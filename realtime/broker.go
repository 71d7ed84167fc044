package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"sniper-dashboard/logging"
	"sniper-dashboard/models"
)

// message is one encoded SSE frame.
type message struct {
	event string
	data  []byte
}

// Broker handles Server-Sent Events (SSE) clients and broadcasting
type Broker struct {
	clients    map[chan message]bool
	register   chan chan message
	unregister chan chan message
	broadcast  chan message
	done       chan struct{}
	mu         sync.RWMutex
	log        *logrus.Entry
}

// NewBroker creates a new SSE broker
func NewBroker() *Broker {
	return &Broker{
		clients:    make(map[chan message]bool),
		register:   make(chan chan message),
		unregister: make(chan chan message),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		log:        logging.WithComponent("sse"),
	}
}

// Name identifies the broker in the handler registry.
func (b *Broker) Name() string { return "sse" }

// Run starts the broker loop and returns when ctx is cancelled.
func (b *Broker) Run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for client := range b.clients {
				delete(b.clients, client)
				close(client)
			}
			b.mu.Unlock()
			return

		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			total := len(b.clients)
			b.mu.Unlock()
			b.log.WithField("clients", total).Info("SSE client connected")

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client)
				b.log.WithField("clients", len(b.clients)).Info("SSE client disconnected")
			}
			b.mu.Unlock()

		case msg := <-b.broadcast:
			b.mu.RLock()
			for client := range b.clients {
				select {
				case client <- msg:
				default:
					// Skip if client buffer is full to prevent blocking
				}
			}
			b.mu.RUnlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeHTTP handles the SSE endpoint
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.Serve(w, r, nil)
}

// Serve is ServeHTTP with an optional initial event written before any
// broadcast, so a new client does not wait for the next change.
func (b *Broker) Serve(w http.ResponseWriter, r *http.Request, initial *models.StateEvent) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	clientChan := make(chan message, 16)
	select {
	case b.register <- clientChan:
	case <-r.Context().Done():
		return
	case <-b.done:
		return
	}

	if initial != nil {
		if msg, err := encode(*initial); err == nil {
			writeFrame(w, msg)
			flusher.Flush()
		}
	}

	for {
		select {
		case <-r.Context().Done():
			select {
			case b.unregister <- clientChan:
			case <-b.done:
			}
			return
		case msg, ok := <-clientChan:
			if !ok {
				return
			}
			writeFrame(w, msg)
			flusher.Flush()
		}
	}
}

// Handle queues a state event for every connected client. It never blocks;
// events are dropped when the broadcast buffer is full.
func (b *Broker) Handle(ev models.StateEvent) error {
	msg, err := encode(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}

	select {
	case b.broadcast <- msg:
	default:
		b.log.WithField("event", ev.Type).Warn("SSE broadcast buffer full, event dropped")
	}
	return nil
}

func encode(ev models.StateEvent) (message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return message{}, err
	}
	return message{event: ev.Type, data: data}, nil
}

func writeFrame(w http.ResponseWriter, msg message) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.event, msg.data)
}
