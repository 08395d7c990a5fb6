package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

// Hub pushes the rendered list to every connected websocket client.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
	logger  *log.Logger
}

// NewHub returns a hub with no clients.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

// Serve upgrades the request, sends snapshot, and keeps the client
// registered until it disconnects. Messages sent by the client are
// discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, snapshot string) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", "err", err)
		return
	}

	wctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	err = c.Write(wctx, websocket.MessageText, []byte(snapshot))
	cancel()
	if err != nil {
		_ = c.CloseNow()
		return
	}

	if !h.add(c) {
		_ = c.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.remove(c)

	ctx := c.CloseRead(context.Background())
	<-ctx.Done()
}

func (h *Hub) add(c *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.CloseNow()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends msg to every client. Clients that cannot keep up are
// dropped.
func (h *Hub) Broadcast(msg string) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.Write(ctx, websocket.MessageText, []byte(msg))
		cancel()
		if err != nil {
			h.logger.Debug("dropping websocket client", "err", err)
			h.remove(c)
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := h.clients
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for c := range conns {
		_ = c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
