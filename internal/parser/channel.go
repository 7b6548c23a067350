package parser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chauey/ngrev/internal/protocol"
)

// Channel is the message link to the analysis worker. Connected is
// advisory: a false answer never blocks a send attempt, it only gives
// the caller something to warn about.
type Channel interface {
	Connected() bool
	Send(ctx context.Context, req protocol.Message) (protocol.Message, error)
	Close() error
}

// FakeChannel scripts worker replies per op. Tests and dry wiring use
// it in place of a spawned worker.
type FakeChannel struct {
	mu        sync.Mutex
	connected bool
	replies   map[string]func(protocol.Message) (protocol.Message, error)
	sent      []protocol.Message
}

func NewFakeChannel() *FakeChannel {
	return &FakeChannel{
		connected: true,
		replies:   map[string]func(protocol.Message) (protocol.Message, error){},
	}
}

func (f *FakeChannel) SetConnected(v bool) {
	f.mu.Lock()
	f.connected = v
	f.mu.Unlock()
}

// Reply scripts the handler for one op.
func (f *FakeChannel) Reply(op string, fn func(protocol.Message) (protocol.Message, error)) {
	f.mu.Lock()
	f.replies[op] = fn
	f.mu.Unlock()
}

// Sent returns a copy of every request that reached the channel.
func (f *FakeChannel) Sent() []protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]protocol.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *FakeChannel) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakeChannel) Send(_ context.Context, req protocol.Message) (protocol.Message, error) {
	f.mu.Lock()
	f.sent = append(f.sent, req)
	fn := f.replies[req.Op]
	f.mu.Unlock()

	if fn == nil {
		return protocol.Message{}, fmt.Errorf("no reply scripted for op %s", req.Op)
	}
	return fn(req)
}

func (f *FakeChannel) Close() error {
	return nil
}
