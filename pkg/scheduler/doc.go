// Package scheduler implements a set of named worker pools executing
// prioritized work and returning futures.
//
// The scheduler owns a table of pools. Each pool has its own queue, its own
// workers and its own pause state. Work is submitted with Submit and
// returns a Future that is fulfilled exactly once, when the work returns,
// fails, panics, or is abandoned because its pool went away.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                           Scheduler                                 │
//	│                                                                     │
//	│   pools (RWMutex)                         Statistics (own Mutex)    │
//	│   ┌──────────┬──────────┬──────────┬──────────┐                     │
//	│   │   main   │    io    │ compute  │ capture  │   ... CreatePool    │
//	│   └────┬─────┴────┬─────┴────┬─────┴────┬─────┘                     │
//	│        │          │          │          │                           │
//	│        ▼          ▼          ▼          ▼                           │
//	│   ┌─────────────────────────────────────────────┐                   │
//	│   │ Pool                                        │                   │
//	│   │   queue  [t1] [t2] [t3] ...   (FIFO | heap) │                   │
//	│   │   wake / idle conditions      (pool Mutex)  │                   │
//	│   │   workers  w0  w1  ... wN                   │                   │
//	│   └─────────────────────────────────────────────┘                   │
//	│                        ▲                                            │
//	│                        │                                            │
//	│                 Submit(work, opts...) ──► *Future                   │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Default Topology
//
// Initialize(defaultThreads, maxThreads) creates:
//
//	┌──────────┬───────────────────────────┬──────────────────────────────┐
//	│ Pool     │ Workers                   │ Used by                      │
//	├──────────┼───────────────────────────┼──────────────────────────────┤
//	│ main     │ max(1, defaultThreads/2)  │ Submit without WithPool      │
//	│ io       │ 2                         │ SubmitIO                     │
//	│ compute  │ max(1, defaultThreads/2)  │ SubmitCompute                │
//	│ capture  │ 1                         │ SubmitCapture (high priority)│
//	└──────────┴───────────────────────────┴──────────────────────────────┘
//
// A second Initialize returns AlreadyInitializedError. maxThreads caps the
// number of workers across all pools (0 means no cap) and is enforced by
// CreatePool and SetPoolSize as well.
//
// # Worker Loop
//
//	        ┌───────────────────────────────────┐
//	        ▼                                   │
//	┌──────────────┐  queue non-empty   ┌───────┴──────┐
//	│   Waiting    │ ─────────────────► │  Executing   │
//	│ (wake.Wait)  │  and not paused    │              │
//	└──────┬───────┘                    └──────────────┘
//	       │ stopping or retired
//	       ▼
//	   (exit)
//
// Executing runs the work with panic recovery, records the duration and
// outcome in Statistics, then fulfills the future with Result{Err, Duration}.
// Panics become TaskPanicError. The stop check happens before dequeuing, so
// stopping a pool never runs the tasks left in its queue: they are failed
// with PoolDestroyedError (DestroyPool) or SchedulerClosedError (Shutdown).
//
// # Ordering
//
// Pools are FIFO. The priority of a task is recorded and exported to metrics
// but does not change the dequeue order, unless the pool was created with
// WithOrdering(OrderPriority), in which case a heap orders by priority and
// then by submission sequence.
//
// # Pause, Resume and Resize
//
// PausePool sets a flag that keeps workers parked on the wake condition.
// Running tasks finish, nothing new is dequeued, the workers stay alive.
// ResumePool clears the flag and wakes every worker.
//
// SetPoolSize spawns workers to grow. To shrink it marks the newest surplus
// workers as retired and waits for them to exit; the remaining workers keep
// serving the queue. A pool resized to zero accepts tasks and keeps them
// queued until it gets workers again.
//
// # Waiting
//
// Future.Wait(ctx) returns the task error or ctx.Err(). A timed out wait does
// not stop the task. Future.Stop cancels the task context. A task that has not
// started is completed at once with context.Canceled, even on a paused pool or
// one without workers, and is skipped when a worker later dequeues it.
//
// WaitForAll(ctx, name) returns when the pool has nothing queued and nothing
// running, which makes statistics final for the tasks submitted before the call.
//
// # Statistics
//
//	┌────────────────────────┬─────────────────────────────────────────────┐
//	│ Field                  │ Meaning                                     │
//	├────────────────────────┼─────────────────────────────────────────────┤
//	│ Submitted              │ tasks finished by a worker                  │
//	│ Completed / Failed     │ split of Submitted by outcome               │
//	│ Abandoned              │ tasks failed by DestroyPool or Shutdown     │
//	│ Rejected               │ tasks refused by a stopping pool            │
//	│ TotalExecutionTimeMs   │ sum of execution durations                  │
//	│ AverageExecutionTimeMs │ TotalExecutionTimeMs / Submitted            │
//	│ CountsByTaskName       │ finished tasks per WithName value           │
//	└────────────────────────┴─────────────────────────────────────────────┘
//
// OverallEfficiency is the completed count across all pools divided by
// TotalSubmitted.
//
// # Usage Example
//
//	sched := scheduler.NewScheduler()
//	if err := sched.Initialize(8, 16); err != nil {
//	    return err
//	}
//	defer sched.Shutdown()
//
//	future := sched.SubmitCompute(func(ctx context.Context) error {
//	    return recognize(ctx, frame)
//	}, scheduler.WithName("ocr"))
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
//	defer cancel()
//	if err := future.Wait(ctx); err != nil {
//	    log.Printf("ocr failed: %v", err)
//	}
package scheduler
