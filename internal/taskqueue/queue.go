package taskqueue

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Task is one unit of serialized work. The queue calls Run with a settle
// callback; the task must invoke it exactly once when its round trip
// finishes. Calls after the first are ignored.
type Task struct {
	Name string
	Run  func(ctx context.Context, settle func())
}

// Queue runs tasks strictly one at a time in arrival order. Whether a
// task may start is decided by the in-flight flag alone, never by the
// backlog length, so pushes that race an in-flight task cannot start a
// second one. The queue never terminates; it idles when drained and
// wakes on the next Push.
type Queue struct {
	ctx    context.Context
	logger *slog.Logger

	mu      sync.Mutex
	backlog []Task
	busy    bool
}

func New(ctx context.Context, logger *slog.Logger) *Queue {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Queue{ctx: ctx, logger: logger}
}

// Push appends the task and dispatches it immediately when nothing is in
// flight. A task that never settles stalls the queue for good; nothing
// here times out on its behalf.
func (q *Queue) Push(task Task) {
	if q == nil || task.Run == nil {
		return
	}
	q.mu.Lock()
	q.backlog = append(q.backlog, task)
	q.logger.Debug("task queued",
		"task", task.Name,
		"backlog", len(q.backlog),
		"busy", q.busy,
	)
	q.dispatchLocked()
	q.mu.Unlock()
}

func (q *Queue) Pending() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

func (q *Queue) Busy() bool {
	if q == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy
}

// dispatchLocked starts the head task unless one is already in flight.
// Callers hold q.mu.
func (q *Queue) dispatchLocked() {
	if q.busy || len(q.backlog) == 0 {
		return
	}
	task := q.backlog[0]
	q.backlog = q.backlog[1:]
	q.busy = true
	go q.run(task)
}

func (q *Queue) run(task Task) {
	settled := make(chan struct{})
	var once sync.Once
	settle := func() {
		once.Do(func() { close(settled) })
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				q.logger.Error("task panicked", "task", task.Name, "panic", r)
				settle()
			}
		}()
		task.Run(q.ctx, settle)
	}()

	<-settled
	q.logger.Debug("task settled", "task", task.Name)

	q.mu.Lock()
	q.busy = false
	q.dispatchLocked()
	q.mu.Unlock()
}
