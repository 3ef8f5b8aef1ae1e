package scheduler

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	srvErrors "github.com/kubev2v/task-scheduler/pkg/errors"
)

type Option func(*Scheduler)

// WithMetrics sets the receiver of task and pool events.
func WithMetrics(m Metrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

type Scheduler struct {
	mu          sync.RWMutex
	pools       map[string]*Pool
	maxThreads  int
	initialized bool

	stats      *Statistics
	metrics    Metrics
	submitted  atomic.Int64
	active     atomic.Int64
	closing    atomic.Bool
	closeOnce  sync.Once
	mainCtx    context.Context
	mainCancel context.CancelFunc
}

func NewScheduler(opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		pools:      make(map[string]*Pool),
		stats:      NewStatistics(),
		metrics:    nilMetrics{},
		mainCtx:    ctx,
		mainCancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize creates the default pools: main and compute with half of
// defaultPoolThreads each (at least one), io with two workers and capture
// with one. maxTotalThreads caps the workers across all pools, 0 disables the cap.
func (s *Scheduler) Initialize(defaultPoolThreads, maxTotalThreads int) error {
	if defaultPoolThreads <= 0 {
		return srvErrors.NewInvalidPoolSizeError(defaultPoolThreads)
	}
	if s.closing.Load() {
		return srvErrors.NewSchedulerClosedError()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Shutdown may have swapped the pool map out while we waited.
	if s.closing.Load() {
		return srvErrors.NewSchedulerClosedError()
	}
	if s.initialized {
		return srvErrors.NewAlreadyInitializedError()
	}

	half := max(1, defaultPoolThreads/2)
	topology := []struct {
		name string
		size int
	}{
		{MainPool, half},
		{IOPool, 2},
		{ComputePool, half},
		{CapturePool, 1},
	}

	required := s.totalWorkersLocked()
	for _, t := range topology {
		if _, ok := s.pools[t.name]; ok {
			return srvErrors.NewPoolExistsError(t.name)
		}
		required += t.size
	}
	if maxTotalThreads > 0 && required > maxTotalThreads {
		return srvErrors.NewThreadLimitError(required, maxTotalThreads)
	}

	for _, t := range topology {
		s.pools[t.name] = newPool(s.mainCtx, t.name, t.size, poolOptions{}, s.stats, s.metrics, &s.active)
	}
	s.maxThreads = maxTotalThreads
	s.initialized = true

	zap.S().Named("scheduler").Infow("scheduler initialized", "default_threads", defaultPoolThreads, "max_threads", maxTotalThreads, "workers", required)
	return nil
}

// Shutdown stops every pool, waits for running tasks and fails the queued
// ones. The scheduler cannot be used afterwards.
func (s *Scheduler) Shutdown() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closing.Store(true)
		pools := s.pools
		s.pools = make(map[string]*Pool)
		s.mu.Unlock()

		s.mainCancel()

		var wg sync.WaitGroup
		var abandoned atomic.Int64
		for _, p := range pools {
			wg.Add(1)
			go func() {
				defer wg.Done()
				abandoned.Add(int64(p.stop(srvErrors.NewSchedulerClosedError())))
			}()
		}
		wg.Wait()

		zap.S().Named("scheduler").Infow("scheduler stopped", "pools", len(pools), "abandoned", abandoned.Load())
	})
}

func (s *Scheduler) CreatePool(name string, size int, opts ...PoolOption) error {
	if size < 0 {
		return srvErrors.NewInvalidPoolSizeError(size)
	}
	if s.closing.Load() {
		return srvErrors.NewSchedulerClosedError()
	}

	var po poolOptions
	for _, opt := range opts {
		opt(&po)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing.Load() {
		return srvErrors.NewSchedulerClosedError()
	}
	if _, ok := s.pools[name]; ok {
		return srvErrors.NewPoolExistsError(name)
	}
	if s.maxThreads > 0 {
		if total := s.totalWorkersLocked() + size; total > s.maxThreads {
			return srvErrors.NewThreadLimitError(total, s.maxThreads)
		}
	}

	s.pools[name] = newPool(s.mainCtx, name, size, po, s.stats, s.metrics, &s.active)
	zap.S().Named("scheduler").Infow("pool created", "pool", name, "workers", size)
	return nil
}

// DestroyPool removes the pool, waits for its running tasks and fails its
// queued tasks with PoolDestroyedError.
func (s *Scheduler) DestroyPool(name string) error {
	s.mu.Lock()
	p, ok := s.pools[name]
	if ok {
		delete(s.pools, name)
	}
	s.mu.Unlock()

	if !ok {
		return srvErrors.NewPoolNotFoundError(name)
	}

	n := p.stop(srvErrors.NewPoolDestroyedError(name))
	zap.S().Named("scheduler").Infow("pool destroyed", "pool", name, "abandoned", n)
	return nil
}

// Submit queues work and returns its future without blocking. Rejected
// work gets a future that is already failed.
func (s *Scheduler) Submit(work Work, opts ...TaskOption) *Future {
	o := taskOptions{
		priority: PriorityNormal,
		pool:     MainPool,
		name:     defaultTaskName,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if s.closing.Load() {
		s.metrics.RecordTaskRejected(o.pool, "shutdown")
		return newFailedFuture(srvErrors.NewSchedulerClosedError())
	}

	p := s.resolve(o.pool)
	if p == nil {
		s.metrics.RecordTaskRejected(o.pool, "no_pool")
		return newFailedFuture(srvErrors.NewNoPoolAvailableError(o.pool))
	}

	ctx, cancel := context.WithCancel(p.ctx)
	t := &Task{
		ID:        uuid.New(),
		Name:      o.name,
		Priority:  o.priority,
		CreatedAt: time.Now(),
		work:      work,
		ctx:       ctx,
	}
	t.future = newFuture(t.ID, cancel)

	s.submitted.Add(1)
	s.active.Add(1)
	if !p.enqueue(t) {
		s.submitted.Add(-1)
		s.active.Add(-1)
		s.stats.RecordRejected(p.name)

		var err error = srvErrors.NewPoolDestroyedError(p.name)
		reason := "destroyed"
		if s.closing.Load() {
			err = srvErrors.NewSchedulerClosedError()
			reason = "shutdown"
		}
		s.metrics.RecordTaskRejected(p.name, reason)
		t.future.fulfill(Result{Err: err})
	}
	return t.future
}

func (s *Scheduler) SubmitIO(work Work, opts ...TaskOption) *Future {
	return s.Submit(work, append(slices.Clip(opts), WithPool(IOPool))...)
}

func (s *Scheduler) SubmitCompute(work Work, opts ...TaskOption) *Future {
	return s.Submit(work, append(slices.Clip(opts), WithPool(ComputePool))...)
}

// SubmitCapture defaults to PriorityHigh unless a priority is given.
func (s *Scheduler) SubmitCapture(work Work, opts ...TaskOption) *Future {
	o := taskOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasPriority {
		opts = append([]TaskOption{WithPriority(PriorityHigh)}, opts...)
	}
	return s.Submit(work, append(slices.Clip(opts), WithPool(CapturePool))...)
}

// resolve falls back to the main pool for unknown names.
func (s *Scheduler) resolve(name string) *Pool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.pools[name]; ok {
		return p
	}
	return s.pools[MainPool]
}

// WaitForAll blocks until the named pool, or every pool when name is empty,
// has nothing queued and nothing running.
func (s *Scheduler) WaitForAll(ctx context.Context, name string) error {
	if name != "" {
		p, err := s.pool(name)
		if err != nil {
			return err
		}
		return p.waitIdle(ctx)
	}

	s.mu.RLock()
	pools := slices.Collect(maps.Values(s.pools))
	s.mu.RUnlock()

	for _, p := range pools {
		if err := p.waitIdle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SetPoolSize grows or shrinks the pool to exactly size workers. A shrink
// waits for the retired workers to finish their current task.
func (s *Scheduler) SetPoolSize(name string, size int) error {
	if size < 0 {
		return srvErrors.NewInvalidPoolSizeError(size)
	}
	if s.closing.Load() {
		return srvErrors.NewSchedulerClosedError()
	}

	s.mu.Lock()
	p, ok := s.pools[name]
	if !ok {
		s.mu.Unlock()
		return srvErrors.NewPoolNotFoundError(name)
	}
	cur := p.size()
	if size >= cur {
		if s.maxThreads > 0 {
			if total := s.totalWorkersLocked() - cur + size; total > s.maxThreads {
				s.mu.Unlock()
				return srvErrors.NewThreadLimitError(total, s.maxThreads)
			}
		}
		p.resize(size)
		s.mu.Unlock()
	} else {
		s.mu.Unlock()
		p.resize(size)
	}

	zap.S().Named("scheduler").Infow("pool resized", "pool", name, "from", cur, "to", size)
	return nil
}

// PausePool stops workers from taking new tasks. Running tasks finish and
// the workers stay alive.
func (s *Scheduler) PausePool(name string) error {
	p, err := s.pool(name)
	if err != nil {
		return err
	}
	p.setPaused(true)
	zap.S().Named("scheduler").Infow("pool paused", "pool", name)
	return nil
}

func (s *Scheduler) ResumePool(name string) error {
	p, err := s.pool(name)
	if err != nil {
		return err
	}
	p.setPaused(false)
	zap.S().Named("scheduler").Infow("pool resumed", "pool", name)
	return nil
}

func (s *Scheduler) PoolStatistics(name string) (PoolStatistics, error) {
	if ps, ok := s.stats.Snapshot(name); ok {
		return ps, nil
	}
	if _, err := s.pool(name); err != nil {
		return PoolStatistics{}, err
	}
	return PoolStatistics{CountsByTaskName: map[string]uint64{}}, nil
}

// AllStatistics includes pools that were destroyed after running tasks.
func (s *Scheduler) AllStatistics() map[string]PoolStatistics {
	all := s.stats.SnapshotAll()
	for _, name := range s.PoolNames() {
		if _, ok := all[name]; !ok {
			all[name] = PoolStatistics{CountsByTaskName: map[string]uint64{}}
		}
	}
	return all
}

// OverallEfficiency is the ratio of completed tasks to submitted tasks
// across all pools.
func (s *Scheduler) OverallEfficiency() float64 {
	submitted := s.submitted.Load()
	if submitted == 0 {
		return 0
	}
	return float64(s.stats.TotalCompleted()) / float64(submitted)
}

func (s *Scheduler) TotalSubmitted() int64 {
	return s.submitted.Load()
}

// ActiveCount is the number of tasks submitted but not finished yet.
func (s *Scheduler) ActiveCount() int64 {
	return s.active.Load()
}

func (s *Scheduler) PoolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.pools))
}

func (s *Scheduler) PoolInfo(name string) (PoolInfo, error) {
	p, err := s.pool(name)
	if err != nil {
		return PoolInfo{}, err
	}
	return p.info(), nil
}

func (s *Scheduler) pool(name string) (*Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[name]
	if !ok {
		return nil, srvErrors.NewPoolNotFoundError(name)
	}
	return p, nil
}

func (s *Scheduler) totalWorkersLocked() int {
	total := 0
	for _, p := range s.pools {
		total += p.size()
	}
	return total
}
