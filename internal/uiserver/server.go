package uiserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/chauey/ngrev/internal/bridge"
	"github.com/chauey/ngrev/internal/protocol"

	"github.com/coder/websocket"
)

const wsReadLimitBytes int64 = 1 << 20 // 1 MiB

// Router is the slice of the command router the server needs: dispatch
// of "req" frames and the status snapshot served over HTTP.
type Router interface {
	Dispatch(msg protocol.Message, emit bridge.Emitter)
	Status() json.RawMessage
}

// Server is the UI-facing surface: the websocket message channel on
// /ws plus the small HTTP side (/healthz, /api/status).
type Server struct {
	router Router
	logger *slog.Logger
	mux    *http.ServeMux
	hub    *Hub
}

func NewServer(router Router, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s := &Server{
		router: router,
		logger: logger,
		mux:    http.NewServeMux(),
		hub:    NewHub(logger),
	}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/ws", s.handleWS)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Hub exposes the broadcast side so wiring can publish host events
// (menu changes, worker exit) to every UI client.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.router.Status())
}

// handleWS owns one UI connection: register, decode frames, hand "req"
// frames to the router with an emitter bound to this connection. The
// emitter wraps each signal in an event frame so the reply channel a
// command arrived on is the one its signal leaves on.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	conn.SetReadLimit(wsReadLimitBytes)
	c := &client{conn: conn}
	s.hub.register(c)
	s.logger.Info("ui client connected", "clients", s.hub.ClientCount())

	defer func() {
		s.hub.unregister(c)
		_ = conn.Close(websocket.StatusNormalClosure, "")
		s.logger.Info("ui client disconnected", "clients", s.hub.ClientCount())
	}()

	emit := func(sig protocol.Signal) {
		s.emitSignal(c, sig)
	}

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("ui frame is not valid json", "err", err)
			continue
		}
		if msg.Type != "req" {
			s.logger.Debug("ignoring non-request ui frame", "type", msg.Type, "op", msg.Op)
			continue
		}
		s.router.Dispatch(msg, emit)
	}
}

func (s *Server) emitSignal(c *client, sig protocol.Signal) {
	raw, err := json.Marshal(protocol.Message{
		ID:      fmt.Sprintf("sig_%d", s.hub.seq.Add(1)),
		Type:    "event",
		Op:      "signal",
		Payload: protocol.MustRaw(sig),
	})
	if err != nil {
		return
	}
	s.hub.write(c, raw)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
