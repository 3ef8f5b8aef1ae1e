package scheduler

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	srvErrors "github.com/kubev2v/task-scheduler/pkg/errors"
)

type worker struct {
	id     int
	retire bool
	done   chan struct{}
}

type PoolOption func(*poolOptions)

type poolOptions struct {
	ordering Ordering
}

// WithOrdering sets the dequeue order of the pool. Pools are FIFO by default.
func WithOrdering(o Ordering) PoolOption {
	return func(po *poolOptions) {
		po.ordering = o
	}
}

// PoolInfo describes the current shape of a pool.
type PoolInfo struct {
	Name     string
	Workers  int
	Queued   int
	Running  int
	Paused   bool
	Ordering Ordering
}

// Pool is a named task queue consumed by its own set of worker goroutines.
// Every field below mu is guarded by it.
type Pool struct {
	name     string
	ordering Ordering
	ctx      context.Context
	cancel   context.CancelFunc
	stats    *Statistics
	metrics  Metrics
	active   *atomic.Int64

	mu       sync.Mutex
	wake     *sync.Cond
	idle     *sync.Cond
	queue    taskQueue
	workers  []*worker
	nextID   int
	seq      uint64
	running  int
	paused   bool
	stopping bool
}

func newPool(ctx context.Context, name string, size int, opts poolOptions, stats *Statistics, metrics Metrics, active *atomic.Int64) *Pool {
	pctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		name:     name,
		ordering: opts.ordering,
		ctx:      pctx,
		cancel:   cancel,
		stats:    stats,
		metrics:  metrics,
		active:   active,
		queue:    newTaskQueue(opts.ordering),
	}
	p.wake = sync.NewCond(&p.mu)
	p.idle = sync.NewCond(&p.mu)

	p.mu.Lock()
	p.spawn(size)
	p.mu.Unlock()

	metrics.RecordWorkers(name, size)
	return p
}

func (p *Pool) Name() string {
	return p.name
}

// spawn must be called with mu held.
func (p *Pool) spawn(n int) {
	for range n {
		w := &worker{id: p.nextID, done: make(chan struct{})}
		p.nextID++
		p.workers = append(p.workers, w)
		go p.run(w)
	}
}

func (p *Pool) run(w *worker) {
	defer close(w.done)
	for {
		p.mu.Lock()
		for !p.stopping && !w.retire && (p.paused || p.queue.Len() == 0) {
			p.wake.Wait()
		}
		if p.stopping || w.retire {
			// hand a pending wake-up over to a worker that stays
			if w.retire && p.queue.Len() > 0 {
				p.wake.Signal()
			}
			p.mu.Unlock()
			return
		}
		t := p.queue.Pop()
		p.running++
		depth := p.queue.Len()
		p.mu.Unlock()

		p.metrics.RecordQueueDepth(p.name, depth)
		p.execute(t)

		p.mu.Lock()
		p.running--
		if p.running == 0 && p.queue.Len() == 0 {
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}
}

func (p *Pool) execute(t *Task) {
	t.future.started.Store(true)
	if err := t.ctx.Err(); err != nil {
		p.stats.RecordCompletion(p.name, t.Name, 0, false)
		p.metrics.RecordTaskFailure(p.name, false)
		t.future.fulfill(Result{Err: err})
		p.active.Add(-1)
		return
	}

	start := time.Now()
	panicked, err := invoke(t)
	d := time.Since(start)

	p.stats.RecordCompletion(p.name, t.Name, d, err == nil)
	p.metrics.RecordTaskDuration(p.name, t.Priority, d)
	if err != nil {
		p.metrics.RecordTaskFailure(p.name, panicked)
		if panicked {
			zap.S().Named("scheduler").Warnw("task panicked", "pool", p.name, "task", t.Name, "id", t.ID, "error", err)
		} else {
			zap.S().Named("scheduler").Debugw("task failed", "pool", p.name, "task", t.Name, "id", t.ID, "error", err)
		}
	}

	t.future.fulfill(Result{Err: err, Duration: d})
	p.active.Add(-1)
}

func invoke(t *Task) (panicked bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			panicked = true
			err = srvErrors.NewTaskPanicError(t.Name, rec)
		}
	}()
	return false, t.work(t.ctx)
}

// enqueue returns false once the pool is stopping.
func (p *Pool) enqueue(t *Task) bool {
	p.mu.Lock()
	if p.stopping {
		p.mu.Unlock()
		return false
	}
	p.seq++
	t.seq = p.seq
	p.queue.Push(t)
	depth := p.queue.Len()
	p.wake.Signal()
	p.mu.Unlock()

	p.metrics.RecordQueueDepth(p.name, depth)
	return true
}

func (p *Pool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// resize grows by spawning workers, or retires the newest surplus workers
// and waits for them to exit. Retired workers finish their current task.
func (p *Pool) resize(n int) {
	p.mu.Lock()
	if p.stopping {
		p.mu.Unlock()
		return
	}
	cur := len(p.workers)
	if n >= cur {
		p.spawn(n - cur)
		p.mu.Unlock()
		p.metrics.RecordWorkers(p.name, n)
		return
	}

	retired := p.workers[n:]
	p.workers = slices.Clone(p.workers[:n])
	for _, w := range retired {
		w.retire = true
	}
	p.wake.Broadcast()
	p.mu.Unlock()

	for _, w := range retired {
		<-w.done
	}
	p.metrics.RecordWorkers(p.name, n)
}

func (p *Pool) setPaused(paused bool) {
	p.mu.Lock()
	p.paused = paused
	p.wake.Broadcast()
	p.mu.Unlock()
}

// waitIdle blocks until nothing is queued or running, or ctx ends.
func (p *Pool) waitIdle(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.idle.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	for p.queue.Len() > 0 || p.running > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.idle.Wait()
	}
	return nil
}

// stop terminates every worker, waits for in-flight tasks and fails the
// tasks left in the queue with reason. It returns the number of abandoned tasks.
func (p *Pool) stop(reason error) int {
	p.mu.Lock()
	if p.stopping {
		p.mu.Unlock()
		return 0
	}
	p.stopping = true
	workers := p.workers
	p.workers = nil
	p.wake.Broadcast()
	p.mu.Unlock()

	p.cancel()
	for _, w := range workers {
		<-w.done
	}

	p.mu.Lock()
	abandoned := p.queue.Drain()
	p.idle.Broadcast()
	p.mu.Unlock()

	for _, t := range abandoned {
		t.future.fulfill(Result{Err: reason})
		p.active.Add(-1)
	}
	p.stats.RecordAbandoned(p.name, len(abandoned))
	p.metrics.RecordWorkers(p.name, 0)
	p.metrics.RecordQueueDepth(p.name, 0)
	return len(abandoned)
}

func (p *Pool) info() PoolInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolInfo{
		Name:     p.name,
		Workers:  len(p.workers),
		Queued:   p.queue.Len(),
		Running:  p.running,
		Paused:   p.paused,
		Ordering: p.ordering,
	}
}
