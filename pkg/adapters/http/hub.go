package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// Event is one message pushed to websocket clients.
type Event struct {
	ID      string         `json:"id"`
	Topic   string         `json:"topic"`
	PageID  string         `json:"pageId,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Event topics.
const (
	TopicSelected = "selected"
	TopicHovering = "hovering"
	TopicHistory  = "history"
	TopicSaved    = "saved"
	TopicPages    = "pages"
)

const writeTimeout = 500 * time.Millisecond

// Hub fans editor events out to websocket clients. Slow clients miss
// events rather than block the editor.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	seq     atomic.Uint64
	log     *slog.Logger
}

// NewHub creates a hub with no clients.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{clients: map[*websocket.Conn]struct{}{}, log: logger}
}

// HandleWS upgrades the request and keeps the connection until the client
// goes away. Incoming messages are ignored.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn("websocket accept failed", "error", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("websocket client connected", "remote", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends an event to every client.
func (h *Hub) Publish(topic, pageID string, payload map[string]any) {
	evt := Event{
		ID:      fmt.Sprintf("evt_%d", h.seq.Add(1)),
		Topic:   topic,
		PageID:  pageID,
		Payload: payload,
	}
	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("event encode failed", "topic", topic, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := c.Write(ctx, websocket.MessageText, msg); err != nil {
			h.log.Debug("event dropped", "topic", topic, "error", err)
		}
		cancel()
	}
}
