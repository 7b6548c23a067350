package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Availability is the worker's answer to a state navigation request. On
// the wire it is a union: the reached state id as a string, bare true,
// or false/null when no such state exists. An empty id string counts as
// not available.
type Availability struct {
	OK      bool
	StateID string
}

func (a Availability) MarshalJSON() ([]byte, error) {
	if !a.OK {
		return []byte("false"), nil
	}
	if a.StateID == "" {
		return []byte("true"), nil
	}
	return json.Marshal(a.StateID)
}

func (a *Availability) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "", "null", "false":
		*a = Availability{}
		return nil
	case "true":
		*a = Availability{OK: true}
		return nil
	}

	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("availability: unexpected value %s", data)
	}
	*a = Availability{OK: id != "", StateID: id}
	return nil
}
