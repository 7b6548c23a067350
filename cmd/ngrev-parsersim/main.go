// ngrev-parsersim stands in for the analysis worker during development:
// it speaks the JSON-lines protocol on stdin/stdout and keeps a toy
// state stack so every host command path can be exercised by hand.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chauey/ngrev/internal/protocol"
)

const maxFrame = 16 * 1024 * 1024

type simulator struct {
	failOps map[string]bool
	muteOps map[string]bool

	loaded bool
	states []string
	nextID int
}

func newSimulator(failOps, muteOps string) *simulator {
	return &simulator{
		failOps: splitOps(failOps),
		muteOps: splitOps(muteOps),
	}
}

func splitOps(csv string) map[string]bool {
	out := map[string]bool{}
	for _, op := range strings.Split(csv, ",") {
		if op = strings.TrimSpace(op); op != "" {
			out[op] = true
		}
	}
	return out
}

// handle produces the reply for one request. The second return value is
// false when the op is muted and no reply must be written, which lets
// the host's stall behavior be observed end to end.
func (s *simulator) handle(req protocol.Message) (protocol.Message, bool) {
	if s.muteOps[req.Op] {
		return protocol.Message{}, false
	}
	res := protocol.Message{ID: req.ID, Type: "res", Op: req.Op}

	switch req.Op {
	case "project.load":
		var params protocol.LoadProjectParams
		_ = json.Unmarshal(req.Payload, &params)
		if s.failOps[req.Op] {
			res.Payload = protocol.MustRaw(map[string]any{"err": "simulated load failure"})
			break
		}
		if _, err := os.Stat(params.Tsconfig); err != nil {
			res.Payload = protocol.MustRaw(map[string]any{"err": fmt.Sprintf("cannot read %s", params.Tsconfig)})
			break
		}
		s.loaded = true
		s.states = []string{s.newStateID()}
		res.Payload = protocol.MustRaw(map[string]any{"err": nil})

	case "state.prev":
		if s.failOps[req.Op] || len(s.states) < 2 {
			res.Payload = protocol.MustRaw(map[string]any{"available": false})
			break
		}
		s.states = s.states[:len(s.states)-1]
		res.Payload = protocol.MustRaw(map[string]any{"available": s.states[len(s.states)-1]})

	case "state.goto":
		var params protocol.StateGotoParams
		_ = json.Unmarshal(req.Payload, &params)
		if s.failOps[req.Op] || !s.loaded || params.ID == "" {
			res.Payload = protocol.MustRaw(map[string]any{"available": false})
			break
		}
		s.states = append(s.states, params.ID)
		res.Payload = protocol.MustRaw(map[string]any{"available": params.ID})

	case "symbols.list":
		if s.failOps[req.Op] || !s.loaded {
			res.Payload = protocol.MustRaw(map[string]any{})
			break
		}
		res.Payload = protocol.MustRaw(map[string]any{"symbols": cannedSymbols()})

	case "metadata.get":
		var params protocol.MetadataParams
		_ = json.Unmarshal(req.Payload, &params)
		if s.failOps[req.Op] || !s.loaded {
			res.Payload = protocol.MustRaw(map[string]any{"data": nil})
			break
		}
		res.Payload = protocol.MustRaw(map[string]any{"data": map[string]any{
			"id":         params.ID,
			"kind":       "component",
			"selector":   "app-root",
			"change_det": "Default",
		}})

	case "data.get":
		if s.failOps[req.Op] || !s.loaded {
			res.Payload = protocol.MustRaw(map[string]any{"data": nil})
			break
		}
		res.Payload = protocol.MustRaw(map[string]any{"data": map[string]any{
			"nodes": []string{"AppModule", "SharedModule"},
			"edges": [][2]string{{"AppModule", "SharedModule"}},
		}})

	case "libs.toggle":
		res.Payload = protocol.MustRaw(map[string]any{})

	default:
		res.Error = &protocol.ErrPayload{Code: "UNSUPPORTED_OP", Message: req.Op}
	}
	return res, true
}

func (s *simulator) newStateID() string {
	s.nextID++
	return fmt.Sprintf("state-%d", s.nextID)
}

func cannedSymbols() []protocol.Symbol {
	return []protocol.Symbol{
		{ID: "sym-1", Name: "AppModule", Kind: "module", Path: "src/app/app.module.ts"},
		{ID: "sym-2", Name: "AppComponent", Kind: "component", Path: "src/app/app.component.ts"},
		{ID: "sym-3", Name: "DataService", Kind: "provider", Path: "src/app/data.service.ts"},
		{ID: "sym-4", Name: "HighlightDirective", Kind: "directive", Path: "src/app/highlight.directive.ts"},
	}
}

func run(in io.Reader, out io.Writer, sim *simulator) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxFrame)
	enc := json.NewEncoder(out)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var req protocol.Message
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			continue
		}
		res, reply := sim.handle(req)
		if !reply {
			continue
		}
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func main() {
	failOps := flag.String("fail-op", "", "comma-separated ops that reply with a failure")
	muteOps := flag.String("mute-op", "", "comma-separated ops that never reply")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, newSimulator(*failOps, *muteOps)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
