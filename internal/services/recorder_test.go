package services_test

import (
	"context"
	"database/sql"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/task-scheduler/internal/models"
	"github.com/kubev2v/task-scheduler/internal/services"
	"github.com/kubev2v/task-scheduler/internal/store"
	"github.com/kubev2v/task-scheduler/pkg/scheduler"
)

type failingWriter struct{}

func (failingWriter) Save(context.Context, time.Time, []models.StatisticsRecord) (string, error) {
	return "", errors.New("disk full")
}

func (failingWriter) Prune(context.Context, time.Time) (int64, error) {
	return 0, nil
}

var _ = Describe("StatsRecorder", func() {
	var (
		ctx   context.Context
		db    *sql.DB
		st    *store.Store
		sched *scheduler.Scheduler
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		st = store.NewStore(db)
		Expect(st.Migrate(ctx)).To(Succeed())

		sched = scheduler.NewScheduler()
		Expect(sched.Initialize(2, 0)).To(Succeed())
	})

	AfterEach(func() {
		sched.Shutdown()
		db.Close()
	})

	Context("Snapshot", func() {
		// Given a scheduler that ran a few tasks
		// When a snapshot is taken
		// Then every pool gets a row under the same snapshot
		It("should persist statistics of every pool", func() {
			// Arrange
			for range 3 {
				Expect(sched.Submit(func(ctx context.Context) error { return nil }, scheduler.WithName("ocr")).Wait(ctx)).To(Succeed())
			}
			recorder := services.NewStatsRecorder(sched, st.Statistics(), time.Hour, 0)

			// Act
			err := recorder.Snapshot(ctx)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			status := recorder.Status()
			Expect(status.Snapshots).To(Equal(1))
			Expect(status.LastSnapshotID).NotTo(BeEmpty())

			records, err := st.Statistics().List(ctx, store.BySnapshot(status.LastSnapshotID))
			Expect(err).NotTo(HaveOccurred())
			pools := make([]string, 0, len(records))
			for _, r := range records {
				pools = append(pools, r.Pool)
				if r.Pool == scheduler.MainPool {
					Expect(r.Submitted).To(Equal(uint64(3)))
					Expect(r.CountsByTaskName).To(HaveKeyWithValue("ocr", uint64(3)))
				}
			}
			Expect(pools).To(ContainElements(scheduler.MainPool, scheduler.IOPool, scheduler.ComputePool, scheduler.CapturePool))
		})

		It("should run as a named task on the io pool", func() {
			recorder := services.NewStatsRecorder(sched, st.Statistics(), time.Hour, 0)

			Expect(recorder.Snapshot(ctx)).To(Succeed())
			Expect(sched.WaitForAll(ctx, scheduler.IOPool)).To(Succeed())

			stats, err := sched.PoolStatistics(scheduler.IOPool)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.CountsByTaskName).To(HaveKeyWithValue("stats-snapshot", uint64(1)))
		})

		It("should record the error of a failed snapshot", func() {
			recorder := services.NewStatsRecorder(sched, failingWriter{}, time.Hour, 0)

			err := recorder.Snapshot(ctx)

			Expect(err).To(MatchError("disk full"))
			Expect(recorder.Status().Error).To(HaveOccurred())
			Expect(recorder.Status().Snapshots).To(BeZero())
		})

		It("should prune snapshots older than the retention", func() {
			_, err := st.Statistics().Save(ctx, time.Now().Add(-2*time.Hour), []models.StatisticsRecord{{Pool: "old"}})
			Expect(err).NotTo(HaveOccurred())
			recorder := services.NewStatsRecorder(sched, st.Statistics(), time.Hour, time.Hour)

			Expect(recorder.Snapshot(ctx)).To(Succeed())

			count, err := st.Statistics().Count(ctx, store.ByPools("old"))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})

	Context("Start and Stop", func() {
		It("should snapshot on every tick until stopped", func() {
			recorder := services.NewStatsRecorder(sched, st.Statistics(), 20*time.Millisecond, 0)

			recorder.Start(ctx)
			recorder.Start(ctx)
			Expect(recorder.Status().State).To(Equal(models.RecorderStateRunning))

			Eventually(func() int {
				return recorder.Status().Snapshots
			}).WithTimeout(2 * time.Second).Should(BeNumerically(">=", 2))

			recorder.Stop()
			Expect(recorder.Status().State).To(Equal(models.RecorderStateStopped))

			taken := recorder.Status().Snapshots
			Consistently(func() int {
				return recorder.Status().Snapshots
			}).WithTimeout(100 * time.Millisecond).Should(Equal(taken))
		})

		It("should tolerate Stop without Start", func() {
			recorder := services.NewStatsRecorder(sched, st.Statistics(), time.Hour, 0)
			Expect(recorder.Stop).NotTo(Panic())
		})
	})
})
