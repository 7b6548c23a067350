package parser

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chauey/ngrev/internal/protocol"

	"github.com/google/uuid"
)

const maxWorkerFrame = 16 * 1024 * 1024

type SpawnOptions struct {
	Bin       string
	Args      []string
	Logger    *slog.Logger
	TraceWire bool
}

// Proc runs the worker binary as a child process and exchanges
// protocol messages with it as JSON lines over stdin/stdout. Replies
// correlate to requests by message id and may arrive out of order.
type Proc struct {
	logger    *slog.Logger
	traceWire bool

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan protocol.Message
	closed  bool
	exitErr error

	done chan struct{}
}

// Spawn starts the worker. Its stderr is passed through to the host's
// so worker logs stay visible.
func Spawn(ctx context.Context, opts SpawnOptions) (*Proc, error) {
	bin := strings.TrimSpace(opts.Bin)
	if bin == "" {
		return nil, errors.New("worker binary is required")
	}

	cmd := exec.CommandContext(ctx, bin, opts.Args...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := newProc(stdin, stdout, cmd.Wait, opts.Logger, opts.TraceWire)
	p.cmd = cmd
	p.logger.Info("worker spawned", "bin", bin, "pid", cmd.Process.Pid)
	return p, nil
}

func newProc(stdin io.WriteCloser, stdout io.Reader, wait func() error, logger *slog.Logger, traceWire bool) *Proc {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	p := &Proc{
		logger:    logger,
		traceWire: traceWire,
		stdin:     stdin,
		pending:   map[string]chan protocol.Message{},
		done:      make(chan struct{}),
	}
	go p.readLoop(stdout)
	go p.watch(wait)
	return p
}

func (p *Proc) Connected() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

// Done closes when the worker process has exited.
func (p *Proc) Done() <-chan struct{} {
	return p.done
}

// Err reports the worker's exit error once Done is closed.
func (p *Proc) Err() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

// Send writes one request and blocks until its reply, the context end,
// or worker exit. A blank id is filled in; the reply is matched on it.
func (p *Proc) Send(ctx context.Context, req protocol.Message) (protocol.Message, error) {
	if p == nil {
		return protocol.Message{}, errors.New("parser channel is not initialized")
	}
	if strings.TrimSpace(req.ID) == "" {
		req.ID = uuid.NewString()
	}
	if req.Type == "" {
		req.Type = "req"
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return protocol.Message{}, errors.New("worker is not running")
	}
	ch := make(chan protocol.Message, 1)
	p.pending[req.ID] = ch
	p.mu.Unlock()
	defer p.forget(req.ID)

	b, err := json.Marshal(req)
	if err != nil {
		return protocol.Message{}, err
	}
	if p.traceWire {
		p.logger.Debug("worker write", "frame", string(b))
	}
	p.writeMu.Lock()
	_, werr := p.stdin.Write(append(b, '\n'))
	p.writeMu.Unlock()
	if werr != nil {
		return protocol.Message{}, werr
	}

	select {
	case <-ctx.Done():
		return protocol.Message{}, ctx.Err()
	case res, ok := <-ch:
		if !ok {
			return protocol.Message{}, errors.New("worker exited before replying")
		}
		return res, nil
	}
}

func (p *Proc) forget(id string) {
	p.mu.Lock()
	delete(p.pending, id)
	p.mu.Unlock()
}

// Close asks the worker to exit by closing its stdin, then kills it if
// it lingers.
func (p *Proc) Close() error {
	if p == nil {
		return nil
	}
	_ = p.stdin.Close()
	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		if p.cmd != nil && p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		<-p.done
	}
	return nil
}

func (p *Proc) readLoop(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxWorkerFrame)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if p.traceWire {
			p.logger.Debug("worker read", "frame", line)
		}
		var msg protocol.Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			p.logger.Warn("worker frame is not valid json", "err", err)
			continue
		}

		p.mu.Lock()
		ch, ok := p.pending[msg.ID]
		if ok {
			delete(p.pending, msg.ID)
		}
		p.mu.Unlock()

		if !ok {
			p.logger.Debug("unmatched worker reply", "id", msg.ID, "op", msg.Op)
			continue
		}
		ch <- msg
	}
}

func (p *Proc) watch(wait func() error) {
	var err error
	if wait != nil {
		err = wait()
	}

	p.mu.Lock()
	p.closed = true
	p.exitErr = err
	orphaned := p.pending
	p.pending = map[string]chan protocol.Message{}
	p.mu.Unlock()

	for _, ch := range orphaned {
		close(ch)
	}
	close(p.done)

	if err != nil {
		p.logger.Warn("worker exited", "err", err)
		return
	}
	p.logger.Info("worker exited")
}
