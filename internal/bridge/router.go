package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/chauey/ngrev/internal/projectstate"
	"github.com/chauey/ngrev/internal/protocol"
	"github.com/chauey/ngrev/internal/taskqueue"

	"github.com/google/uuid"
)

// Emitter receives the signals a dispatched command produces.
type Emitter func(protocol.Signal)

// WorkerChannel is the slice of the parser channel the router needs.
type WorkerChannel interface {
	Connected() bool
	Send(ctx context.Context, req protocol.Message) (protocol.Message, error)
}

// ExportMenu is the chrome capability the export commands flip without
// touching the queue or the worker.
type ExportMenu interface {
	SetExportEnabled(enabled bool)
	Enabled() bool
}

// ProjectLog records successfully loaded projects for the recents list.
type ProjectLog interface {
	Touch(tsconfig string, showLibs bool) error
}

// Router turns UI command messages into serialized worker round trips.
// Every routed command yields at most one signal: the interpretation
// rules decide success or failure, and two documented cases (a symbols
// reply without a listing, a failed send) yield none at all.
type Router struct {
	queue  *taskqueue.Queue
	worker WorkerChannel
	menu   ExportMenu
	logger *slog.Logger

	history  *projectstate.History
	projects ProjectLog
	uiConfig json.RawMessage
}

func NewRouter(queue *taskqueue.Queue, worker WorkerChannel, menu ExportMenu, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Router{queue: queue, worker: worker, menu: menu, logger: logger}
}

// SetHistory wires the state history surfaced by app.status. Nothing in
// the router appends to it.
func (r *Router) SetHistory(h *projectstate.History) {
	r.history = h
}

func (r *Router) SetProjects(p ProjectLog) {
	r.projects = p
}

// SetUIConfig supplies the raw block served on config.get.
func (r *Router) SetUIConfig(raw json.RawMessage) {
	r.uiConfig = raw
}

// Status reports the host's runtime state as a JSON payload. app.status
// and the HTTP status route both serve it.
func (r *Router) Status() json.RawMessage {
	st := struct {
		WorkerConnected bool    `json:"worker_connected"`
		QueuePending    int     `json:"queue_pending"`
		QueueBusy       bool    `json:"queue_busy"`
		CurrentState    *string `json:"current_state"`
		HistoryLen      int     `json:"history_len"`
		ExportEnabled   bool    `json:"export_enabled"`
	}{
		WorkerConnected: r.worker.Connected(),
		QueuePending:    r.queue.Pending(),
		QueueBusy:       r.queue.Busy(),
		HistoryLen:      r.history.Len(),
		ExportEnabled:   r.menu.Enabled(),
	}
	if id, ok := r.history.Current(); ok {
		st.CurrentState = &id
	}
	return protocol.MustRaw(st)
}

// Dispatch routes one UI command. Export toggles and the glue ops run
// synchronously; everything else becomes a queue task that performs a
// single worker round trip and emits its signal before settling, so the
// signal for a command always lands before the next round trip starts.
func (r *Router) Dispatch(msg protocol.Message, emit Emitter) {
	if r == nil {
		return
	}
	if emit == nil {
		emit = func(protocol.Signal) {}
	}
	op := strings.TrimSpace(msg.Op)

	switch op {
	case "export.enable":
		r.menu.SetExportEnabled(true)
		emit(protocol.Success(op, protocol.MustRaw(true)))
		return
	case "export.disable":
		r.menu.SetExportEnabled(false)
		emit(protocol.Success(op, protocol.MustRaw(true)))
		return
	case "app.status":
		emit(protocol.Success(op, r.Status()))
		return
	case "config.get":
		raw := r.uiConfig
		if len(raw) == 0 {
			raw = protocol.MustRaw(map[string]any{})
		}
		emit(protocol.Success(op, raw))
		return
	}

	var req protocol.Message
	var interpret func(protocol.Message) *protocol.Signal

	switch op {
	case "project.load":
		var params protocol.LoadProjectParams
		if err := json.Unmarshal(msg.Payload, &params); err != nil {
			r.logger.Debug("bad project.load params", "err", err)
			emit(protocol.Failure(op, protocol.MustRaw("invalid params")))
			return
		}
		if strings.TrimSpace(params.Tsconfig) == "" {
			emit(protocol.Failure(op, protocol.MustRaw("tsconfig is required")))
			return
		}
		req = r.buildRequest(op, protocol.MustRaw(params))
		interpret = func(res protocol.Message) *protocol.Signal {
			var reply protocol.LoadReply
			_ = json.Unmarshal(res.Payload, &reply)
			if reply.Failed() {
				sig := protocol.Failure(op, reply.Err)
				return &sig
			}
			if r.projects != nil {
				if err := r.projects.Touch(params.Tsconfig, params.ShowLibs); err != nil {
					r.logger.Warn("project history touch failed", "err", err)
				}
			}
			sig := protocol.Success(op, protocol.MustRaw(nil))
			return &sig
		}

	case "state.prev":
		req = r.buildRequest(op, nil)
		interpret = r.stateInterpret(op)

	case "state.goto":
		var params protocol.StateGotoParams
		if err := json.Unmarshal(msg.Payload, &params); err != nil || strings.TrimSpace(params.ID) == "" {
			emit(protocol.Failure(op, protocol.MustRaw("state id is required")))
			return
		}
		req = r.buildRequest(op, protocol.MustRaw(params))
		interpret = r.stateInterpret(op)

	case "symbols.list":
		req = r.buildRequest(op, nil)
		interpret = func(res protocol.Message) *protocol.Signal {
			var reply protocol.SymbolsReply
			_ = json.Unmarshal(res.Payload, &reply)
			if !reply.Present() {
				r.logger.Debug("symbols reply carries no listing, emitting nothing")
				return nil
			}
			sig := protocol.Success(op, reply.Symbols)
			return &sig
		}

	case "metadata.get":
		var params protocol.MetadataParams
		if err := json.Unmarshal(msg.Payload, &params); err != nil || strings.TrimSpace(params.ID) == "" {
			emit(protocol.Failure(op, protocol.MustRaw("symbol id is required")))
			return
		}
		req = r.buildRequest(op, protocol.MustRaw(params))
		interpret = r.dataInterpret(op)

	case "data.get":
		req = r.buildRequest(op, nil)
		interpret = r.dataInterpret(op)

	case "libs.toggle":
		req = r.buildRequest(op, nil)
		interpret = func(protocol.Message) *protocol.Signal {
			sig := protocol.Success(op, protocol.MustRaw(true))
			return &sig
		}

	default:
		r.logger.Warn("unsupported op", "op", op)
		emit(protocol.Failure(op, protocol.MustRaw("unsupported op")))
		return
	}

	if !r.worker.Connected() {
		r.logger.Warn("worker not connected, queueing anyway", "op", op)
	}

	r.queue.Push(taskqueue.Task{Name: op, Run: func(ctx context.Context, settle func()) {
		res, err := r.worker.Send(ctx, req)
		if err != nil {
			r.logger.Error("worker send failed, no signal emitted", "op", op, "err", err)
			settle()
			return
		}
		if sig := interpret(res); sig != nil {
			emit(*sig)
		}
		settle()
	}})
}

func (r *Router) buildRequest(op string, payload json.RawMessage) protocol.Message {
	return protocol.Message{ID: uuid.NewString(), Type: "req", Op: op, Payload: payload}
}

func (r *Router) stateInterpret(op string) func(protocol.Message) *protocol.Signal {
	return func(res protocol.Message) *protocol.Signal {
		var reply protocol.StateReply
		_ = json.Unmarshal(res.Payload, &reply)
		if reply.Available.OK {
			sig := protocol.Success(op, protocol.MustRaw(reply.Available))
			return &sig
		}
		sig := protocol.Failure(op, protocol.MustRaw(false))
		return &sig
	}
}

func (r *Router) dataInterpret(op string) func(protocol.Message) *protocol.Signal {
	return func(res protocol.Message) *protocol.Signal {
		var reply protocol.DataReply
		_ = json.Unmarshal(res.Payload, &reply)
		if !reply.Present() {
			sig := protocol.Failure(op, protocol.MustRaw(nil))
			return &sig
		}
		sig := protocol.Success(op, reply.Data)
		return &sig
	}
}
