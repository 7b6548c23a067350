package protocol

import (
	"encoding/json"
	"testing"
)

func TestAvailability_Unmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
		id   string
	}{
		{"state id", `"state-2"`, true, "state-2"},
		{"bare true", `true`, true, ""},
		{"false", `false`, false, ""},
		{"null", `null`, false, ""},
		{"empty string", `""`, false, ""},
	}
	for _, tc := range cases {
		var a Availability
		if err := json.Unmarshal([]byte(tc.in), &a); err != nil {
			t.Fatalf("%s: unmarshal failed: %v", tc.name, err)
		}
		if a.OK != tc.ok || a.StateID != tc.id {
			t.Fatalf("%s: got %+v", tc.name, a)
		}
	}

	var a Availability
	if err := json.Unmarshal([]byte(`{"nested":true}`), &a); err == nil {
		t.Fatalf("expected error for object value")
	}
}

func TestAvailability_MissingField(t *testing.T) {
	var reply StateReply
	if err := json.Unmarshal([]byte(`{}`), &reply); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if reply.Available.OK {
		t.Fatalf("missing field should not be available")
	}
}

func TestAvailability_Marshal(t *testing.T) {
	if got := string(MustRaw(Availability{OK: true, StateID: "state-7"})); got != `"state-7"` {
		t.Fatalf("got %s", got)
	}
	if got := string(MustRaw(Availability{OK: true})); got != `true` {
		t.Fatalf("got %s", got)
	}
	if got := string(MustRaw(Availability{})); got != `false` {
		t.Fatalf("got %s", got)
	}
}

func TestReplyPresence(t *testing.T) {
	var syms SymbolsReply
	if err := json.Unmarshal([]byte(`{"symbols":[]}`), &syms); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !syms.Present() {
		t.Fatalf("empty list still counts as present")
	}

	var missing SymbolsReply
	if err := json.Unmarshal([]byte(`{}`), &missing); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if missing.Present() {
		t.Fatalf("missing field reported present")
	}

	var data DataReply
	if err := json.Unmarshal([]byte(`{"data":null}`), &data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if data.Present() {
		t.Fatalf("null data reported present")
	}

	var load LoadReply
	if err := json.Unmarshal([]byte(`{"err":"ENOENT"}`), &load); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !load.Failed() {
		t.Fatalf("err value should mark the load failed")
	}
	if err := json.Unmarshal([]byte(`{"err":null}`), &load); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if load.Failed() {
		t.Fatalf("null err should not mark the load failed")
	}
}
