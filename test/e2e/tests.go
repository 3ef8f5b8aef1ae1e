package main

import (
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/kubev2v/task-scheduler/api/v1"
	"github.com/kubev2v/task-scheduler/test/e2e/infra"
	"github.com/kubev2v/task-scheduler/test/e2e/service"
)

const e2ePool = "e2e-batch"

var _ = Describe("Task scheduler", Ordered, func() {
	var (
		schedulerCfg infra.SchedulerConfig
		anonymous    *service.SchedulerSvc
		svc          *service.SchedulerSvc
	)

	start := func() {
		baseURL, err := infraManager.StartScheduler(schedulerCfg)
		Expect(err).NotTo(HaveOccurred())

		anonymous = service.NewSchedulerSvc(baseURL, infraManager.GenerateToken)
		svc, err = anonymous.WithAuthSubject("e2e")
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeAll(func() {
		schedulerCfg = infra.SchedulerConfig{
			DataFolder:       filepath.Join(cfg.WorkDir, "data"),
			SnapshotInterval: time.Second,
			Auth:             true,
		}
		start()
	})

	AfterAll(func() {
		Expect(infraManager.StopScheduler()).To(Succeed())
	})

	Context("Authentication", func() {
		It("should reject requests without a token", func() {
			_, err := anonymous.ListPools()
			Expect(service.StatusCode(err)).To(Equal(http.StatusUnauthorized))
		})

		It("should accept requests with a signed token", func() {
			_, err := svc.ListPools()
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("Default pools", func() {
		It("should expose the four default pools", func() {
			list, err := svc.ListPools()
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, 0, len(list.Pools))
			for _, p := range list.Pools {
				names = append(names, p.Name)
			}
			Expect(names).To(ContainElements("main", "io", "compute", "capture"))
		})

		It("should report an efficiency between 0 and 1", func() {
			eff, err := svc.Efficiency()
			Expect(err).NotTo(HaveOccurred())
			Expect(eff.Efficiency).To(BeNumerically(">=", 0))
			Expect(eff.Efficiency).To(BeNumerically("<=", 1))
		})
	})

	Context("Pool lifecycle", func() {
		It("should create a priority pool", func() {
			pool, err := svc.CreatePool(e2ePool, 2, v1.PoolOrderingPriority)
			Expect(err).NotTo(HaveOccurred())
			Expect(pool.Workers).To(Equal(2))
			Expect(pool.Ordering).To(Equal(v1.PoolOrderingPriority))
		})

		It("should refuse a duplicate pool", func() {
			_, err := svc.CreatePool(e2ePool, 1, "")
			Expect(service.StatusCode(err)).To(Equal(http.StatusConflict))
		})

		It("should resize the pool", func() {
			pool, err := svc.ResizePool(e2ePool, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(pool.Workers).To(Equal(4))
		})

		It("should refuse a negative size", func() {
			_, err := svc.ResizePool(e2ePool, -1)
			Expect(service.StatusCode(err)).To(Equal(http.StatusBadRequest))
		})

		It("should pause and resume the pool", func() {
			pool, err := svc.PausePool(e2ePool)
			Expect(err).NotTo(HaveOccurred())
			Expect(pool.Paused).To(BeTrue())

			pool, err = svc.ResumePool(e2ePool)
			Expect(err).NotTo(HaveOccurred())
			Expect(pool.Paused).To(BeFalse())
		})

		It("should answer 404 for an unknown pool", func() {
			_, err := svc.GetPool("does-not-exist")
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
		})
	})

	Context("Statistics history", func() {
		It("should record snapshots periodically", func() {
			Eventually(func(g Gomega) {
				history, err := svc.History("io")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(history.Total).To(BeNumerically(">", 0))
			}).WithTimeout(15 * time.Second).WithPolling(500 * time.Millisecond).Should(Succeed())
		})

		It("should report a running recorder", func() {
			status, err := svc.RecorderStatus()
			Expect(err).NotTo(HaveOccurred())
			Expect(status.State).To(Equal("running"))
			Expect(status.Snapshots).To(BeNumerically(">", 0))
		})

		It("should count the snapshot tasks in the io pool", func() {
			Eventually(func(g Gomega) {
				pool, err := svc.GetPool("io")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(pool.Stats.CountsByTaskName).To(HaveKey("stats-snapshot"))
			}).WithTimeout(5 * time.Second).WithPolling(500 * time.Millisecond).Should(Succeed())
		})
	})

	Context("Restart", func() {
		BeforeEach(func() {
			if cfg.InfraMode != "process" {
				Skip("restart needs the process infra mode")
			}
		})

		It("should restore created pools and keep history", func() {
			Expect(infraManager.StopScheduler()).To(Succeed())
			start()

			pool, err := svc.GetPool(e2ePool)
			Expect(err).NotTo(HaveOccurred())
			Expect(pool.Workers).To(Equal(4))
			Expect(pool.Ordering).To(Equal(v1.PoolOrderingPriority))

			history, err := svc.History()
			Expect(err).NotTo(HaveOccurred())
			Expect(history.Total).To(BeNumerically(">", 0))
		})
	})

	Context("Cleanup", func() {
		It("should delete the pool", func() {
			Expect(svc.DeletePool(e2ePool)).To(Succeed())

			_, err := svc.GetPool(e2ePool)
			Expect(service.StatusCode(err)).To(Equal(http.StatusNotFound))
		})
	})
})
