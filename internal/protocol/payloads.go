package protocol

import (
	"bytes"
	"encoding/json"
)

type LoadProjectParams struct {
	Tsconfig string `json:"tsconfig"`
	ShowLibs bool   `json:"show_libs"`
}

type StateGotoParams struct {
	ID string `json:"id"`
}

type MetadataParams struct {
	ID string `json:"id"`
}

// LoadReply carries the worker's load result. Err stays raw so the
// original error value reaches the UI unmodified.
type LoadReply struct {
	Err json.RawMessage `json:"err"`
}

func (r LoadReply) Failed() bool { return rawPresent(r.Err) }

type StateReply struct {
	Available Availability `json:"available"`
}

type SymbolsReply struct {
	Symbols json.RawMessage `json:"symbols"`
}

func (r SymbolsReply) Present() bool { return rawPresent(r.Symbols) }

type DataReply struct {
	Data json.RawMessage `json:"data"`
}

func (r DataReply) Present() bool { return rawPresent(r.Data) }

// Symbol is one entry of a symbols listing.
type Symbol struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
}

func rawPresent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
