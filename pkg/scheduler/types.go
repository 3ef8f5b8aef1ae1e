package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Priority is carried by every task. Pools using OrderFIFO ignore it.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Work is the unit of work executed by a worker. The context is cancelled
// when the future is stopped or the owning pool goes away.
type Work func(ctx context.Context) error

type Result struct {
	Err      error
	Duration time.Duration
}

type Future struct {
	id     uuid.UUID
	done   chan struct{}
	once   sync.Once
	result Result
	cancel context.CancelFunc

	// set by the worker right before the task context is checked
	started atomic.Bool
}

func newFuture(id uuid.UUID, cancel context.CancelFunc) *Future {
	return &Future{
		id:     id,
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// newFailedFuture returns a future that is already fulfilled with err.
func newFailedFuture(err error) *Future {
	f := newFuture(uuid.New(), func() {})
	f.fulfill(Result{Err: err})
	return f
}

func (f *Future) ID() uuid.UUID {
	return f.id
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result returns the task result. It is only meaningful after Done is closed.
func (f *Future) Result() Result {
	select {
	case <-f.done:
		return f.result
	default:
		return Result{}
	}
}

// Wait blocks until the task finishes or ctx ends. A timed out wait does not
// stop the task.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.result.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels the task context. A task that has not started yet is
// completed right away with context.Canceled and is skipped once a worker
// dequeues it, even when its pool is paused or has no workers. A running
// task completes when its work returns.
func (f *Future) Stop() {
	f.cancel()
	if !f.started.Load() {
		f.fulfill(Result{Err: context.Canceled})
	}
}

// fulfill reports whether this call was the one that set the result.
func (f *Future) fulfill(r Result) bool {
	fulfilled := false
	f.once.Do(func() {
		f.result = r
		close(f.done)
		f.cancel()
		fulfilled = true
	})
	return fulfilled
}

type Task struct {
	ID        uuid.UUID
	Name      string
	Priority  Priority
	CreatedAt time.Time

	work   Work
	ctx    context.Context
	future *Future
	seq    uint64
}

const (
	defaultTaskName = "anonymous"

	MainPool    = "main"
	IOPool      = "io"
	ComputePool = "compute"
	CapturePool = "capture"
)

type taskOptions struct {
	priority    Priority
	pool        string
	name        string
	hasPriority bool
}

type TaskOption func(*taskOptions)

func WithPriority(p Priority) TaskOption {
	return func(o *taskOptions) {
		o.priority = p
		o.hasPriority = true
	}
}

// WithPool selects the target pool. Unknown names fall back to the main pool.
func WithPool(name string) TaskOption {
	return func(o *taskOptions) {
		o.pool = name
	}
}

// WithName sets the name used to bucket statistics.
func WithName(name string) TaskOption {
	return func(o *taskOptions) {
		o.name = name
	}
}
