package uiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chauey/ngrev/internal/protocol"

	"github.com/coder/websocket"
)

const writeTimeout = 2 * time.Second

// client is one connected UI process. Writes are serialized per
// connection; the read loop and broadcasts share the same socket.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Hub tracks connected UI clients and fans events out to all of them.
// A client whose write fails or times out is dropped on the spot.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	seq     atomic.Uint64
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Hub{logger: logger, clients: map[*client]struct{}{}}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts one event frame to every connected client.
func (h *Hub) Publish(topic string, payload any) {
	if h == nil {
		return
	}
	evt := protocol.Message{
		ID:      fmt.Sprintf("evt_%d", h.seq.Add(1)),
		Type:    "event",
		Op:      topic,
		Payload: protocol.MustRaw(payload),
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.write(c, raw)
	}
}

// write delivers one frame to one client, dropping it on failure so a
// stuck UI cannot back everyone else up.
func (h *Hub) write(c *client, raw []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	c.writeMu.Lock()
	err := c.conn.Write(ctx, websocket.MessageText, raw)
	c.writeMu.Unlock()
	cancel()

	if err != nil {
		h.logger.Warn("dropping slow ui client", "err", err)
		h.unregister(c)
		_ = c.conn.Close(websocket.StatusPolicyViolation, "write timeout")
	}
}
