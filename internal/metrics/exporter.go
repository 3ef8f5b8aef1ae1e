package metrics

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/kubev2v/task-scheduler/pkg/scheduler"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// Exporter adapts scheduler.Metrics to Prometheus collectors.
type Exporter struct {
	taskDurationSeconds *prom.HistogramVec
	taskFailedTotal     *prom.CounterVec
	taskRejectedTotal   *prom.CounterVec
	queueDepth          *prom.GaugeVec
	workers             *prom.GaugeVec
}

var _ scheduler.Metrics = (*Exporter)(nil)

// NewExporter creates and registers the collectors. Registering twice on
// the same registry reuses the existing collectors.
func NewExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*Exporter, error) {
	if namespace == "" {
		namespace = "task_scheduler"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"pool", "priority"})
	failedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_failed_total",
		Help:      "Total number of tasks that returned an error or panicked.",
	}, []string{"pool", "panicked"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of rejected tasks.",
	}, []string{"pool", "reason"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current queue depth.",
	}, []string{"pool"})
	workersVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_workers",
		Help:      "Current number of workers.",
	}, []string{"pool"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if failedVec, err = registerCollector(reg, failedVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}
	if workersVec, err = registerCollector(reg, workersVec); err != nil {
		return nil, err
	}

	return &Exporter{
		taskDurationSeconds: durationVec,
		taskFailedTotal:     failedVec,
		taskRejectedTotal:   rejectedVec,
		queueDepth:          queueDepthVec,
		workers:             workersVec,
	}, nil
}

func (m *Exporter) RecordTaskDuration(pool string, priority scheduler.Priority, d time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(normalizeLabel(pool, "unknown"), priority.String()).Observe(d.Seconds())
}

func (m *Exporter) RecordTaskFailure(pool string, panicked bool) {
	if m == nil {
		return
	}
	label := "false"
	if panicked {
		label = "true"
	}
	m.taskFailedTotal.WithLabelValues(normalizeLabel(pool, "unknown"), label).Inc()
}

func (m *Exporter) RecordTaskRejected(pool string, reason string) {
	if m == nil {
		return
	}
	m.taskRejectedTotal.WithLabelValues(normalizeLabel(pool, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

func (m *Exporter) RecordQueueDepth(pool string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(normalizeLabel(pool, "unknown")).Set(float64(depth))
}

func (m *Exporter) RecordWorkers(pool string, workers int) {
	if m == nil {
		return
	}
	m.workers.WithLabelValues(normalizeLabel(pool, "unknown")).Set(float64(workers))
}

// Source is the part of the scheduler read by RegisterSchedulerGauges.
type Source interface {
	OverallEfficiency() float64
	ActiveCount() int64
	TotalSubmitted() int64
}

// RegisterSchedulerGauges exposes scheduler-wide values evaluated at scrape time.
func RegisterSchedulerGauges(namespace string, reg prom.Registerer, src Source) error {
	if namespace == "" {
		namespace = "task_scheduler"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	collectors := []prom.Collector{
		prom.NewGaugeFunc(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "efficiency_ratio",
			Help:      "Completed tasks over submitted tasks across all pools.",
		}, src.OverallEfficiency),
		prom.NewGaugeFunc(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "active_tasks",
			Help:      "Tasks submitted and not finished yet.",
		}, func() float64 { return float64(src.ActiveCount()) }),
		prom.NewCounterFunc(prom.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Tasks accepted by the scheduler.",
		}, func() float64 { return float64(src.TotalSubmitted()) }),
	}
	for _, c := range collectors {
		if _, err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
