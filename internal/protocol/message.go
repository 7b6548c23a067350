package protocol

import "encoding/json"

type Message struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload"`
	Error   *ErrPayload     `json:"error,omitempty"`
}

type ErrPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Signal is the single completion notification a routed command produces.
// Outcome is "success" or "failure"; Payload holds the JSON value the
// interpretation rules derived from the worker reply.
type Signal struct {
	Op      string          `json:"op"`
	Outcome string          `json:"outcome"`
	Payload json.RawMessage `json:"payload"`
}

func Success(op string, payload json.RawMessage) Signal {
	return Signal{Op: op, Outcome: "success", Payload: payload}
}

func Failure(op string, payload json.RawMessage) Signal {
	return Signal{Op: op, Outcome: "failure", Payload: payload}
}

func MustRaw(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
