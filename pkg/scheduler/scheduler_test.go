package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	srvErrors "github.com/kubev2v/task-scheduler/pkg/errors"
	"github.com/kubev2v/task-scheduler/pkg/scheduler"
)

type recordingMetrics struct {
	mu         sync.Mutex
	priorities map[string][]scheduler.Priority
	panics     int
	rejected   map[string]int
	workers    map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		priorities: map[string][]scheduler.Priority{},
		rejected:   map[string]int{},
		workers:    map[string]int{},
	}
}

func (m *recordingMetrics) RecordTaskDuration(pool string, p scheduler.Priority, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priorities[pool] = append(m.priorities[pool], p)
}

func (m *recordingMetrics) RecordTaskFailure(_ string, panicked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if panicked {
		m.panics++
	}
}

func (m *recordingMetrics) RecordTaskRejected(_ string, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[reason]++
}

func (m *recordingMetrics) RecordQueueDepth(string, int) {}

func (m *recordingMetrics) RecordWorkers(pool string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[pool] = n
}

func (m *recordingMetrics) prioritiesOf(pool string) []scheduler.Priority {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]scheduler.Priority(nil), m.priorities[pool]...)
}

// blocker returns work that signals started and waits for release.
func blocker(started chan<- struct{}, release <-chan struct{}) scheduler.Work {
	return func(ctx context.Context) error {
		started <- struct{}{}
		<-release
		return nil
	}
}

func waitAll(s *scheduler.Scheduler, pool string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	Expect(s.WaitForAll(ctx, pool)).To(Succeed())
}

func workers(s *scheduler.Scheduler, pool string) int {
	info, err := s.PoolInfo(pool)
	Expect(err).NotTo(HaveOccurred())
	return info.Workers
}

var _ = Describe("Scheduler", func() {
	var s *scheduler.Scheduler

	BeforeEach(func() {
		s = scheduler.NewScheduler()
	})

	AfterEach(func() {
		if s != nil {
			s.Shutdown()
		}
	})

	Describe("Initialize", func() {
		It("should create the default topology", func() {
			Expect(s.Initialize(8, 0)).To(Succeed())

			Expect(s.PoolNames()).To(Equal([]string{"capture", "compute", "io", "main"}))
			Expect(workers(s, scheduler.MainPool)).To(Equal(4))
			Expect(workers(s, scheduler.IOPool)).To(Equal(2))
			Expect(workers(s, scheduler.ComputePool)).To(Equal(4))
			Expect(workers(s, scheduler.CapturePool)).To(Equal(1))
		})

		It("should give main and compute at least one worker", func() {
			Expect(s.Initialize(1, 0)).To(Succeed())

			Expect(workers(s, scheduler.MainPool)).To(Equal(1))
			Expect(workers(s, scheduler.ComputePool)).To(Equal(1))
		})

		It("should reject a second initialization", func() {
			Expect(s.Initialize(4, 0)).To(Succeed())

			err := s.Initialize(4, 0)
			Expect(srvErrors.IsAlreadyInitializedError(err)).To(BeTrue())
			Expect(s.PoolNames()).To(HaveLen(4))
		})

		It("should reject a topology above the thread limit", func() {
			err := s.Initialize(8, 4)
			Expect(srvErrors.IsThreadLimitError(err)).To(BeTrue())
			Expect(s.PoolNames()).To(BeEmpty())
		})

		It("should reject a non positive thread count", func() {
			Expect(srvErrors.IsInvalidPoolSizeError(s.Initialize(0, 0))).To(BeTrue())
		})

		It("should reject initialization after shutdown", func() {
			s.Shutdown()
			Expect(srvErrors.IsSchedulerClosedError(s.Initialize(4, 0))).To(BeTrue())
		})
	})

	Describe("CreatePool and DestroyPool", func() {
		It("should refuse duplicate names", func() {
			Expect(s.CreatePool("x", 1)).To(Succeed())
			Expect(srvErrors.IsPoolExistsError(s.CreatePool("x", 2))).To(BeTrue())
			Expect(workers(s, "x")).To(Equal(1))
		})

		It("should refuse negative sizes", func() {
			Expect(srvErrors.IsInvalidPoolSizeError(s.CreatePool("x", -1))).To(BeTrue())
		})

		It("should enforce the thread limit set by Initialize", func() {
			Expect(s.Initialize(2, 6)).To(Succeed())

			Expect(s.CreatePool("x", 1)).To(Succeed())
			Expect(srvErrors.IsThreadLimitError(s.CreatePool("y", 1))).To(BeTrue())
		})

		It("should return not found for unknown pools", func() {
			Expect(srvErrors.IsPoolNotFoundError(s.DestroyPool("nope"))).To(BeTrue())
		})

		It("should fail queued tasks with PoolDestroyedError", func() {
			Expect(s.CreatePool("x", 1)).To(Succeed())

			started := make(chan struct{}, 1)
			release := make(chan struct{})
			running := s.Submit(blocker(started, release), scheduler.WithPool("x"))
			Eventually(started, time.Second).Should(Receive())

			var ran atomic.Int32
			queued := make([]*scheduler.Future, 0, 3)
			for i := 0; i < 3; i++ {
				queued = append(queued, s.Submit(func(ctx context.Context) error {
					ran.Add(1)
					return nil
				}, scheduler.WithPool("x")))
			}

			destroyed := make(chan error, 1)
			go func() {
				destroyed <- s.DestroyPool("x")
			}()

			Consistently(destroyed, 100*time.Millisecond).ShouldNot(Receive())
			close(release)
			Eventually(destroyed, time.Second).Should(Receive(BeNil()))

			Expect(running.Wait(context.Background())).To(Succeed())
			for _, f := range queued {
				Eventually(f.Done(), time.Second).Should(BeClosed())
				Expect(srvErrors.IsPoolDestroyedError(f.Result().Err)).To(BeTrue())
			}
			Expect(ran.Load()).To(BeZero())
			Expect(s.PoolNames()).NotTo(ContainElement("x"))

			all := s.AllStatistics()
			Expect(all["x"].Abandoned).To(Equal(uint64(3)))
			Expect(all["x"].Completed).To(Equal(uint64(1)))
			Expect(s.ActiveCount()).To(BeZero())
		})
	})

	Describe("Submit", func() {
		It("should run the example scenario", func() {
			Expect(s.CreatePool("x", 2)).To(Succeed())

			for i := 0; i < 5; i++ {
				s.Submit(func(ctx context.Context) error {
					time.Sleep(10 * time.Millisecond)
					return nil
				}, scheduler.WithPool("x"), scheduler.WithName("sleep"))
			}
			waitAll(s, "x")

			stats, err := s.PoolStatistics("x")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Completed).To(Equal(uint64(5)))
			Expect(stats.AverageExecutionTimeMs).To(BeNumerically(">=", 9))
			Expect(stats.AverageExecutionTimeMs).To(BeNumerically("<", 20))
			Expect(stats.CountsByTaskName).To(HaveKeyWithValue("sleep", uint64(5)))
		})

		It("should dequeue in submission order regardless of priority", func() {
			Expect(s.CreatePool("x", 1)).To(Succeed())
			Expect(s.PausePool("x")).To(Succeed())

			var mu sync.Mutex
			var order []int
			priorities := []scheduler.Priority{
				scheduler.PriorityLow,
				scheduler.PriorityCritical,
				scheduler.PriorityNormal,
				scheduler.PriorityHigh,
				scheduler.PriorityLow,
				scheduler.PriorityCritical,
			}
			for i, p := range priorities {
				idx := i
				s.Submit(func(ctx context.Context) error {
					mu.Lock()
					order = append(order, idx)
					mu.Unlock()
					return nil
				}, scheduler.WithPool("x"), scheduler.WithPriority(p))
			}

			Expect(s.ResumePool("x")).To(Succeed())
			waitAll(s, "x")
			Expect(order).To(Equal([]int{0, 1, 2, 3, 4, 5}))
		})

		It("should honor priority on pools created with OrderPriority", func() {
			Expect(s.CreatePool("x", 1, scheduler.WithOrdering(scheduler.OrderPriority))).To(Succeed())
			Expect(s.PausePool("x")).To(Succeed())

			var mu sync.Mutex
			var order []string
			submit := func(name string, p scheduler.Priority) {
				s.Submit(func(ctx context.Context) error {
					mu.Lock()
					order = append(order, name)
					mu.Unlock()
					return nil
				}, scheduler.WithPool("x"), scheduler.WithPriority(p))
			}
			submit("low", scheduler.PriorityLow)
			submit("normal", scheduler.PriorityNormal)
			submit("critical", scheduler.PriorityCritical)
			submit("high", scheduler.PriorityHigh)

			Expect(s.ResumePool("x")).To(Succeed())
			waitAll(s, "x")
			Expect(order).To(Equal([]string{"critical", "high", "normal", "low"}))
		})

		It("should surface task errors on the future and in statistics", func() {
			Expect(s.CreatePool("x", 1)).To(Succeed())
			boom := errors.New("boom")

			f := s.Submit(func(ctx context.Context) error { return boom }, scheduler.WithPool("x"))

			Expect(f.Wait(context.Background())).To(MatchError(boom))
			waitAll(s, "x")
			stats, _ := s.PoolStatistics("x")
			Expect(stats.Failed).To(Equal(uint64(1)))
			Expect(stats.Completed).To(BeZero())
		})

		It("should recover panics and keep the worker alive", func() {
			m := newRecordingMetrics()
			s = scheduler.NewScheduler(scheduler.WithMetrics(m))
			Expect(s.CreatePool("x", 1)).To(Succeed())

			f := s.Submit(func(ctx context.Context) error { panic("kaboom") }, scheduler.WithPool("x"), scheduler.WithName("bad"))
			err := f.Wait(context.Background())
			Expect(srvErrors.IsTaskPanicError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("kaboom"))

			next := s.Submit(func(ctx context.Context) error { return nil }, scheduler.WithPool("x"))
			Expect(next.Wait(context.Background())).To(Succeed())
			Expect(workers(s, "x")).To(Equal(1))

			m.mu.Lock()
			defer m.mu.Unlock()
			Expect(m.panics).To(Equal(1))
		})

		It("should fulfill each future exactly once and only after the work returned", func() {
			Expect(s.CreatePool("x", 4)).To(Succeed())

			const n = 50
			var finished [n]atomic.Bool
			futures := make([]*scheduler.Future, n)
			for i := 0; i < n; i++ {
				idx := i
				futures[i] = s.Submit(func(ctx context.Context) error {
					time.Sleep(time.Millisecond)
					finished[idx].Store(true)
					return nil
				}, scheduler.WithPool("x"))
			}

			for i, f := range futures {
				Eventually(f.Done(), 5*time.Second).Should(BeClosed())
				Expect(finished[i].Load()).To(BeTrue())
				Expect(f.Result().Duration).To(BeNumerically(">", 0))
			}
			waitAll(s, "x")
			stats, _ := s.PoolStatistics("x")
			Expect(stats.Submitted).To(Equal(uint64(n)))
		})

		It("should not lose work under concurrent submission", func() {
			Expect(s.CreatePool("x", 4)).To(Succeed())

			const submitters = 8
			const perSubmitter = 50
			var wg sync.WaitGroup
			for i := 0; i < submitters; i++ {
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					for j := 0; j < perSubmitter; j++ {
						fail := (idx+j)%7 == 0
						s.Submit(func(ctx context.Context) error {
							if fail {
								return errors.New("failed")
							}
							return nil
						}, scheduler.WithPool("x"))
					}
				}(i)
			}
			wg.Wait()
			waitAll(s, "x")

			stats, _ := s.PoolStatistics("x")
			Expect(stats.Submitted).To(Equal(uint64(submitters * perSubmitter)))
			Expect(stats.Completed + stats.Failed).To(Equal(uint64(submitters * perSubmitter)))
			Expect(s.TotalSubmitted()).To(Equal(int64(submitters * perSubmitter)))
			Expect(s.ActiveCount()).To(BeZero())
			Expect(stats.AverageExecutionTimeMs * float64(stats.Submitted)).To(BeNumerically("~", stats.TotalExecutionTimeMs, 1e-6))
		})

		It("should fall back to the main pool for unknown pool names", func() {
			Expect(s.CreatePool(scheduler.MainPool, 1)).To(Succeed())

			f := s.Submit(func(ctx context.Context) error { return nil }, scheduler.WithPool("nope"))
			Expect(f.Wait(context.Background())).To(Succeed())

			waitAll(s, scheduler.MainPool)
			stats, _ := s.PoolStatistics(scheduler.MainPool)
			Expect(stats.Completed).To(Equal(uint64(1)))
		})

		It("should fail when neither the pool nor main exist", func() {
			f := s.Submit(func(ctx context.Context) error { return nil }, scheduler.WithPool("nope"))

			Expect(f.Done()).To(BeClosed())
			Expect(srvErrors.IsNoPoolAvailableError(f.Result().Err)).To(BeTrue())
			Expect(s.TotalSubmitted()).To(BeZero())
		})

		It("should pin the convenience wrappers to their pools", func() {
			m := newRecordingMetrics()
			s = scheduler.NewScheduler(scheduler.WithMetrics(m))
			Expect(s.Initialize(2, 0)).To(Succeed())

			noop := func(ctx context.Context) error { return nil }
			Expect(s.SubmitIO(noop).Wait(context.Background())).To(Succeed())
			Expect(s.SubmitCompute(noop).Wait(context.Background())).To(Succeed())
			Expect(s.SubmitCapture(noop).Wait(context.Background())).To(Succeed())
			Expect(s.SubmitCapture(noop, scheduler.WithPriority(scheduler.PriorityLow)).Wait(context.Background())).To(Succeed())
			waitAll(s, "")

			Expect(m.prioritiesOf(scheduler.IOPool)).To(Equal([]scheduler.Priority{scheduler.PriorityNormal}))
			Expect(m.prioritiesOf(scheduler.ComputePool)).To(Equal([]scheduler.Priority{scheduler.PriorityNormal}))
			Expect(m.prioritiesOf(scheduler.CapturePool)).To(Equal([]scheduler.Priority{scheduler.PriorityHigh, scheduler.PriorityLow}))
			Expect(m.prioritiesOf(scheduler.MainPool)).To(BeEmpty())
		})

		It("should not write into the caller's option slice", func() {
			Expect(s.Initialize(2, 0)).To(Succeed())
			noop := func(ctx context.Context) error { return nil }

			opts := make([]scheduler.TaskOption, 1, 4)
			opts[0] = scheduler.WithName("shared")
			spare := opts[:2]
			spare[1] = scheduler.WithPriority(scheduler.PriorityLow)

			Expect(s.SubmitIO(noop, opts...).Wait(context.Background())).To(Succeed())
			Expect(s.SubmitCompute(noop, opts...).Wait(context.Background())).To(Succeed())
			Expect(s.SubmitCapture(noop, opts...).Wait(context.Background())).To(Succeed())

			// spare[1] must still be the low priority option, not a pool override
			f := s.Submit(noop, spare...)
			Expect(f.Wait(context.Background())).To(Succeed())
			waitAll(s, "")

			stats, err := s.PoolStatistics(scheduler.MainPool)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Completed).To(Equal(uint64(1)))
		})
	})

	Describe("Future", func() {
		It("should time out a wait without stopping the work", func() {
			Expect(s.CreatePool("x", 1)).To(Succeed())
			release := make(chan struct{})
			started := make(chan struct{}, 1)

			f := s.Submit(blocker(started, release), scheduler.WithPool("x"))
			Eventually(started, time.Second).Should(Receive())

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			Expect(f.Wait(ctx)).To(MatchError(context.DeadlineExceeded))

			close(release)
			Expect(f.Wait(context.Background())).To(Succeed())
		})

		It("should skip a task stopped before it was dequeued", func() {
			Expect(s.CreatePool("x", 1)).To(Succeed())
			Expect(s.PausePool("x")).To(Succeed())

			var ran atomic.Bool
			f := s.Submit(func(ctx context.Context) error {
				ran.Store(true)
				return nil
			}, scheduler.WithPool("x"))
			f.Stop()
			Expect(s.ResumePool("x")).To(Succeed())

			Expect(f.Wait(context.Background())).To(MatchError(context.Canceled))
			Expect(ran.Load()).To(BeFalse())

			waitAll(s, "x")
			stats, _ := s.PoolStatistics("x")
			Expect(stats.Failed).To(Equal(uint64(1)))
		})

		DescribeTable("should complete a stopped task without waiting for a worker",
			func(hold func(pool string), release func(pool string)) {
				Expect(s.CreatePool("x", 1)).To(Succeed())
				hold("x")

				var ran atomic.Bool
				f := s.Submit(func(ctx context.Context) error {
					ran.Store(true)
					return nil
				}, scheduler.WithPool("x"))
				f.Stop()

				Expect(f.Done()).To(BeClosed())
				Expect(f.Result().Err).To(MatchError(context.Canceled))
				info, _ := s.PoolInfo("x")
				Expect(info.Queued).To(Equal(1))

				release("x")
				waitAll(s, "x")
				Expect(ran.Load()).To(BeFalse())
				Expect(s.ActiveCount()).To(BeZero())
			},
			Entry("paused pool",
				func(pool string) { Expect(s.PausePool(pool)).To(Succeed()) },
				func(pool string) { Expect(s.ResumePool(pool)).To(Succeed()) }),
			Entry("pool without workers",
				func(pool string) { Expect(s.SetPoolSize(pool, 0)).To(Succeed()) },
				func(pool string) { Expect(s.SetPoolSize(pool, 1)).To(Succeed()) }),
		)

		It("should cancel the context of a running task on Stop", func() {
			Expect(s.CreatePool("x", 1)).To(Succeed())

			f := s.Submit(func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}, scheduler.WithPool("x"))

			time.Sleep(20 * time.Millisecond)
			f.Stop()
			Expect(f.Wait(context.Background())).To(MatchError(context.Canceled))
		})
	})

	Describe("WaitForAll", func() {
		It("should wait for running tasks, not only for an empty queue", func() {
			Expect(s.CreatePool("x", 1)).To(Succeed())
			var finished atomic.Bool
			s.Submit(func(ctx context.Context) error {
				time.Sleep(50 * time.Millisecond)
				finished.Store(true)
				return nil
			}, scheduler.WithPool("x"))

			waitAll(s, "x")
			Expect(finished.Load()).To(BeTrue())
		})

		It("should return the context error when the pool stays busy", func() {
			Expect(s.CreatePool("x", 0)).To(Succeed())
			s.Submit(func(ctx context.Context) error { return nil }, scheduler.WithPool("x"))

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			Expect(s.WaitForAll(ctx, "x")).To(MatchError(context.DeadlineExceeded))
		})

		It("should return not found for unknown pools", func() {
			Expect(srvErrors.IsPoolNotFoundError(s.WaitForAll(context.Background(), "nope"))).To(BeTrue())
		})
	})

	Describe("SetPoolSize", func() {
		It("should grow the pool", func() {
			Expect(s.CreatePool("x", 1)).To(Succeed())
			Expect(s.SetPoolSize("x", 3)).To(Succeed())
			Expect(workers(s, "x")).To(Equal(3))

			started := make(chan struct{}, 3)
			release := make(chan struct{})
			for i := 0; i < 3; i++ {
				s.Submit(blocker(started, release), scheduler.WithPool("x"))
			}
			for i := 0; i < 3; i++ {
				Eventually(started, time.Second).Should(Receive())
			}
			close(release)
			waitAll(s, "x")
		})

		It("should shrink to exactly the requested number of workers and keep serving", func() {
			Expect(s.CreatePool("x", 3)).To(Succeed())
			Expect(s.SetPoolSize("x", 1)).To(Succeed())
			Expect(workers(s, "x")).To(Equal(1))

			started := make(chan struct{}, 2)
			release := make(chan struct{})
			for i := 0; i < 2; i++ {
				s.Submit(blocker(started, release), scheduler.WithPool("x"))
			}

			Eventually(started, time.Second).Should(Receive())
			Consistently(started, 100*time.Millisecond).ShouldNot(Receive())

			info, _ := s.PoolInfo("x")
			Expect(info.Running).To(Equal(1))
			Expect(info.Queued).To(Equal(1))

			close(release)
			Eventually(started, time.Second).Should(Receive())
			waitAll(s, "x")
		})

		It("should let a retiring worker finish its current task", func() {
			Expect(s.CreatePool("x", 2)).To(Succeed())
			started := make(chan struct{}, 2)
			release := make(chan struct{})
			futures := []*scheduler.Future{
				s.Submit(blocker(started, release), scheduler.WithPool("x")),
				s.Submit(blocker(started, release), scheduler.WithPool("x")),
			}
			Eventually(started, time.Second).Should(Receive())
			Eventually(started, time.Second).Should(Receive())

			resized := make(chan error, 1)
			go func() {
				resized <- s.SetPoolSize("x", 1)
			}()
			Consistently(resized, 100*time.Millisecond).ShouldNot(Receive())

			close(release)
			Eventually(resized, time.Second).Should(Receive(BeNil()))
			for _, f := range futures {
				Expect(f.Wait(context.Background())).To(Succeed())
			}
		})

		It("should keep a zero-worker pool enqueue-only until it gets workers", func() {
			Expect(s.CreatePool("x", 2)).To(Succeed())
			Expect(s.SetPoolSize("x", 0)).To(Succeed())

			f := s.Submit(func(ctx context.Context) error { return nil }, scheduler.WithPool("x"))
			Consistently(f.Done(), 100*time.Millisecond).ShouldNot(BeClosed())

			Expect(s.SetPoolSize("x", 1)).To(Succeed())
			Eventually(f.Done(), time.Second).Should(BeClosed())
			Expect(f.Result().Err).NotTo(HaveOccurred())
		})

		It("should validate its arguments", func() {
			Expect(s.Initialize(2, 6)).To(Succeed())

			Expect(srvErrors.IsPoolNotFoundError(s.SetPoolSize("nope", 1))).To(BeTrue())
			Expect(srvErrors.IsInvalidPoolSizeError(s.SetPoolSize(scheduler.MainPool, -1))).To(BeTrue())
			Expect(srvErrors.IsThreadLimitError(s.SetPoolSize(scheduler.MainPool, 3))).To(BeTrue())
			Expect(s.SetPoolSize(scheduler.MainPool, 2)).To(Succeed())
		})
	})

	Describe("PausePool and ResumePool", func() {
		It("should hold tasks while paused without killing workers", func() {
			Expect(s.CreatePool("x", 2)).To(Succeed())
			Expect(s.PausePool("x")).To(Succeed())

			var ran atomic.Int32
			for i := 0; i < 4; i++ {
				s.Submit(func(ctx context.Context) error {
					ran.Add(1)
					return nil
				}, scheduler.WithPool("x"))
			}

			Consistently(ran.Load, 100*time.Millisecond).Should(BeZero())
			info, _ := s.PoolInfo("x")
			Expect(info.Paused).To(BeTrue())
			Expect(info.Workers).To(Equal(2))
			Expect(info.Queued).To(Equal(4))

			Expect(s.ResumePool("x")).To(Succeed())
			Eventually(ran.Load, time.Second).Should(Equal(int32(4)))

			Expect(s.PausePool("x")).To(Succeed())
			Expect(s.ResumePool("x")).To(Succeed())
			f := s.Submit(func(ctx context.Context) error { return nil }, scheduler.WithPool("x"))
			Expect(f.Wait(context.Background())).To(Succeed())
			Expect(workers(s, "x")).To(Equal(2))
		})

		It("should return not found for unknown pools", func() {
			Expect(srvErrors.IsPoolNotFoundError(s.PausePool("nope"))).To(BeTrue())
			Expect(srvErrors.IsPoolNotFoundError(s.ResumePool("nope"))).To(BeTrue())
		})
	})

	Describe("Statistics", func() {
		It("should report zero efficiency before any submission", func() {
			Expect(s.OverallEfficiency()).To(BeZero())
		})

		It("should compute overall efficiency across pools", func() {
			Expect(s.Initialize(2, 0)).To(Succeed())

			s.SubmitIO(func(ctx context.Context) error { return nil })
			s.SubmitCompute(func(ctx context.Context) error { return nil })
			s.Submit(func(ctx context.Context) error { return nil })
			s.Submit(func(ctx context.Context) error { return errors.New("no") })
			waitAll(s, "")

			Expect(s.OverallEfficiency()).To(BeNumerically("~", 0.75, 1e-9))
		})

		It("should list every live pool even before it ran anything", func() {
			Expect(s.Initialize(2, 0)).To(Succeed())

			all := s.AllStatistics()
			Expect(all).To(HaveLen(4))
			Expect(all[scheduler.IOPool].Submitted).To(BeZero())

			_, err := s.PoolStatistics("nope")
			Expect(srvErrors.IsPoolNotFoundError(err)).To(BeTrue())
		})
	})

	Describe("Shutdown", func() {
		It("should resolve every future of a burst followed by shutdown", func() {
			Expect(s.Initialize(4, 0)).To(Succeed())

			futures := make([]*scheduler.Future, 0, 100)
			for i := 0; i < 100; i++ {
				futures = append(futures, s.Submit(func(ctx context.Context) error {
					time.Sleep(time.Millisecond)
					return nil
				}))
			}
			s.Shutdown()

			for _, f := range futures {
				Eventually(f.Done(), 5*time.Second).Should(BeClosed())
				if err := f.Result().Err; err != nil {
					Expect(srvErrors.IsSchedulerClosedError(err)).To(BeTrue())
				}
			}
			Expect(s.ActiveCount()).To(BeZero())
			Expect(s.PoolNames()).To(BeEmpty())
		})

		It("should reject submissions afterwards", func() {
			m := newRecordingMetrics()
			s = scheduler.NewScheduler(scheduler.WithMetrics(m))
			Expect(s.Initialize(2, 0)).To(Succeed())
			s.Shutdown()

			f := s.Submit(func(ctx context.Context) error { return nil })
			Expect(f.Done()).To(BeClosed())
			Expect(srvErrors.IsSchedulerClosedError(f.Result().Err)).To(BeTrue())
			Expect(srvErrors.IsSchedulerClosedError(s.CreatePool("x", 1))).To(BeTrue())

			m.mu.Lock()
			defer m.mu.Unlock()
			Expect(m.rejected["shutdown"]).To(Equal(1))
		})

		It("should wait for in-flight work", func() {
			Expect(s.CreatePool("x", 1)).To(Succeed())
			started := make(chan struct{}, 1)
			release := make(chan struct{})
			f := s.Submit(blocker(started, release), scheduler.WithPool("x"))
			Eventually(started, time.Second).Should(Receive())

			closed := make(chan struct{})
			go func() {
				s.Shutdown()
				close(closed)
			}()

			Consistently(closed, 200*time.Millisecond).ShouldNot(BeClosed())
			close(release)
			Eventually(closed, time.Second).Should(BeClosed())
			Expect(f.Result().Err).NotTo(HaveOccurred())
		})

		It("should not leak goroutines", func() {
			base := runtime.NumGoroutine()
			Expect(s.Initialize(8, 0)).To(Succeed())
			Expect(s.CreatePool("extra", 4)).To(Succeed())

			for i := 0; i < 200; i++ {
				s.Submit(func(ctx context.Context) error {
					<-ctx.Done()
					return ctx.Err()
				}, scheduler.WithPool("extra"))
			}
			time.Sleep(50 * time.Millisecond)
			s.Shutdown()

			Eventually(runtime.NumGoroutine, 5*time.Second, 100*time.Millisecond).Should(BeNumerically("<=", base+10))
		})

		It("should not let pools created during shutdown survive it", func() {
			for round := 0; round < 20; round++ {
				s = scheduler.NewScheduler()
				Expect(s.Initialize(2, 0)).To(Succeed())

				var wg sync.WaitGroup
				start := make(chan struct{})
				for i := 0; i < 8; i++ {
					wg.Add(1)
					go func() {
						defer GinkgoRecover()
						defer wg.Done()
						<-start
						err := s.CreatePool(fmt.Sprintf("late-%d", i), 1)
						if err != nil {
							Expect(srvErrors.IsSchedulerClosedError(err)).To(BeTrue())
						}
					}()
				}
				close(start)
				s.Shutdown()
				wg.Wait()

				Expect(s.PoolNames()).To(BeEmpty())
				Expect(srvErrors.IsSchedulerClosedError(s.Initialize(2, 0))).To(BeTrue())
			}
		})

		It("should be idempotent", func() {
			Expect(s.Initialize(2, 0)).To(Succeed())
			s.Shutdown()
			s.Shutdown()
		})
	})
})
