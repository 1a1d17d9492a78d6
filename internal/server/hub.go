package server

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/alnah/go-mdslides/internal/live"
)

// clientBuffer is the number of messages queued per connection before the
// oldest is dropped.
const clientBuffer = 32

// ErrHubClosed is returned when posting to a closed hub.
var ErrHubClosed = errors.New("hub closed")

// Compile-time interface checks.
var (
	_ live.Surface  = (*Hub)(nil)
	_ live.Notifier = (*Hub)(nil)
)

// client is one connected page. Messages are written by a single goroutine
// reading from send.
type client struct {
	send chan live.Message
}

// Hub fans messages out to every open page of the display surface.
// It is the live.Surface of the HTTP server: Show asks pages to reload (they
// fetch the new page from GET /), Post forwards incremental updates.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	log     *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

// Show implements live.Surface.
func (h *Hub) Show(string) error {
	return h.broadcast(live.ReloadMessage())
}

// Post implements live.Surface.
func (h *Hub) Post(msg live.Message) error {
	return h.broadcast(msg)
}

// Error implements live.Notifier: the failure is logged and shown as a
// notice on every open page.
func (h *Hub) Error(err error) {
	h.log.Error("render failed", "error", err)
	if postErr := h.broadcast(live.NoticeMessage(err.Error())); postErr != nil {
		h.log.Debug("posting notice", "error", postErr)
	}
}

// Clients returns the number of connected pages.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// register adds a connection. Returns nil if the hub is closed.
func (h *Hub) register() *client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	c := &client{send: make(chan live.Message, clientBuffer)}
	h.clients[c] = struct{}{}
	h.log.Debug("page connected", "clients", len(h.clients))
	return c
}

// unregister removes a connection and closes its queue.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Debug("page disconnected", "clients", len(h.clients))
	}
}

// broadcast queues msg on every connection without blocking.
func (h *Hub) broadcast(msg live.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	for c := range h.clients {
		push(c.send, msg)
	}
	return nil
}

// Close disconnects every page. Later posts fail with ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// push queues msg, dropping the oldest queued message when the buffer is full.
func push(ch chan live.Message, msg live.Message) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}
