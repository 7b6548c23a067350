package projectstate

import (
	"slices"
	"testing"
)

func TestHistory_EmptyHasNoCurrent(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Current(); ok {
		t.Fatal("empty history should have no current state")
	}
	if h.Len() != 0 {
		t.Fatalf("unexpected length: %d", h.Len())
	}
}

func TestHistory_PushMovesCurrent(t *testing.T) {
	h := NewHistory()
	h.Push("state-1")
	h.Push("state-2")

	got, ok := h.Current()
	if !ok || got != "state-2" {
		t.Fatalf("unexpected current: %q ok=%v", got, ok)
	}
	if h.Len() != 2 {
		t.Fatalf("unexpected length: %d", h.Len())
	}
	if !slices.Equal(h.Snapshot(), []string{"state-1", "state-2"}) {
		t.Fatalf("unexpected snapshot: %#v", h.Snapshot())
	}
}

func TestHistory_BlankIdsDropped(t *testing.T) {
	h := NewHistory()
	h.Push("   ")
	h.Push("")
	if h.Len() != 0 {
		t.Fatalf("blank ids should be dropped, got %d entries", h.Len())
	}
}

func TestHistory_SnapshotIsACopy(t *testing.T) {
	h := NewHistory()
	h.Push("state-1")
	snap := h.Snapshot()
	snap[0] = "mutated"

	got, _ := h.Current()
	if got != "state-1" {
		t.Fatalf("snapshot mutation leaked into history: %q", got)
	}
}
