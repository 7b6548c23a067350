package projectstate

import (
	"strings"
	"sync"
)

// History records analysis state ids in arrival order. Entries are never
// removed or rewritten; Current exposes the newest one. Nothing in the
// command path appends yet, so the sequence stays empty until a caller
// chooses to record states.
type History struct {
	mu     sync.RWMutex
	states []string
}

func NewHistory() *History {
	return &History{}
}

// Push appends a state id. Blank ids are dropped.
func (h *History) Push(id string) {
	if h == nil {
		return
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	h.mu.Lock()
	h.states = append(h.states, id)
	h.mu.Unlock()
}

func (h *History) Current() (string, bool) {
	if h == nil {
		return "", false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.states) == 0 {
		return "", false
	}
	return h.states[len(h.states)-1], true
}

func (h *History) Len() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.states)
}

// Snapshot returns a copy of the full sequence, oldest first.
func (h *History) Snapshot() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.states))
	copy(out, h.states)
	return out
}
