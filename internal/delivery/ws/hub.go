// Package ws implements the real-time broadcast surface. A single hub
// fans BroadcastEvents out to every connected websocket client, best
// effort; clients that cannot keep up are dropped silently.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"dealradar/internal/domain/service"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/fx"
)

const broadcastBuffer = 16

type HubParams struct {
	fx.In
	fx.Lifecycle

	Logger *slog.Logger
}

// Hub maintains the set of active clients and broadcasts events to them.
// It implements service.Broadcaster.
type Hub struct {
	logger *slog.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once

	// clients is only touched by the run loop; count mirrors its size
	// for callers outside the loop.
	clients map[*client]struct{}

	mu    sync.RWMutex
	count int

	upgrader websocket.Upgrader
}

// NewHub creates the hub and hooks its shutdown into the fx lifecycle.
func NewHub(params HubParams) *Hub {
	hub := &Hub{
		logger:     params.Logger,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from arbitrary origins in development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			hub.close()

			return nil
		},
	})

	return hub
}

// Serve runs the hub loop until the context is canceled or the hub is
// closed. Register and unregister are handled before broadcasts so
// client state is settled when a message fans out.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()

			return ctx.Err()
		case <-h.done:
			h.closeAllClients()

			return nil
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount(len(h.clients))
			h.logger.Info("websocket client connected", slog.Int("total_clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.setCount(len(h.clients))
			h.logger.Info("websocket client disconnected", slog.Int("total_clients", len(h.clients)))
		case payload := <-h.broadcast:
			h.fanOut(payload)
		}
	}
}

// Broadcast pushes one event to every connected client. It never blocks
// and never returns an error; when the hub is saturated the event is
// dropped with a warning.
func (h *Hub) Broadcast(event service.BroadcastEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to encode broadcast event", slog.Any("error", err))

		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("broadcast queue full, dropping event", slog.String("type", event.Type))
	}
}

// HandleConnection upgrades an HTTP request to a websocket connection
// and registers the client with the hub.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return err
	}

	c := newClient(h, conn)

	select {
	case h.register <- c:
	case <-h.done:
		return conn.Close()
	}

	c.start()

	return nil
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.count
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

func (h *Hub) close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// fanOut delivers one payload to every client. A client whose send
// buffer is full is removed on the spot; a stalled consumer must never
// stall the ingestion pipeline.
func (h *Hub) fanOut(payload []byte) {
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			close(c.send)
			h.logger.Warn("dropping slow websocket client")
		}
	}
	h.setCount(len(h.clients))
}

func (h *Hub) closeAllClients() {
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.setCount(0)
}
