package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/task-scheduler/internal/models"
	"github.com/kubev2v/task-scheduler/pkg/scheduler"
)

const snapshotTaskName = "stats-snapshot"

// StatisticsSource is the part of the scheduler read by the recorder.
type StatisticsSource interface {
	AllStatistics() map[string]scheduler.PoolStatistics
	SubmitIO(work scheduler.Work, opts ...scheduler.TaskOption) *scheduler.Future
}

type SnapshotWriter interface {
	Save(ctx context.Context, takenAt time.Time, records []models.StatisticsRecord) (string, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// StatsRecorder periodically writes the scheduler statistics to the store.
// Every snapshot runs as a task on the io pool.
type StatsRecorder struct {
	source    StatisticsSource
	writer    SnapshotWriter
	interval  time.Duration
	retention time.Duration

	mu     sync.Mutex
	status models.RecorderStatus
	cancel context.CancelFunc
	done   chan struct{}
}

func NewStatsRecorder(source StatisticsSource, writer SnapshotWriter, interval, retention time.Duration) *StatsRecorder {
	return &StatsRecorder{
		source:    source,
		writer:    writer,
		interval:  interval,
		retention: retention,
		status:    models.RecorderStatus{State: models.RecorderStateStopped},
	}
}

// Start launches the loop. Calling it on a running recorder does nothing.
func (r *StatsRecorder) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.status.State = models.RecorderStateRunning

	go r.run(ctx, r.done)
	zap.S().Named("recorder").Infow("statistics recorder started", "interval", r.interval, "retention", r.retention)
}

// Stop ends the loop and waits for it. The snapshot in progress, if any,
// is allowed to finish.
func (r *StatsRecorder) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	r.mu.Lock()
	r.status.State = models.RecorderStateStopped
	r.mu.Unlock()
	zap.S().Named("recorder").Info("statistics recorder stopped")
}

func (r *StatsRecorder) Status() models.RecorderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *StatsRecorder) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Snapshot(ctx); err != nil && ctx.Err() == nil {
				zap.S().Named("recorder").Warnw("statistics snapshot failed", "error", err)
			}
		}
	}
}

// Snapshot submits one snapshot task and waits for it.
func (r *StatsRecorder) Snapshot(ctx context.Context) error {
	var snapshotID string
	takenAt := time.Now()

	future := r.source.SubmitIO(func(ctx context.Context) error {
		records := ToRecords(r.source.AllStatistics())
		id, err := r.writer.Save(ctx, takenAt, records)
		if err != nil {
			return err
		}
		snapshotID = id

		if r.retention > 0 {
			n, err := r.writer.Prune(ctx, takenAt.Add(-r.retention))
			if err != nil {
				return err
			}
			if n > 0 {
				zap.S().Named("recorder").Debugw("old snapshots pruned", "rows", n)
			}
		}
		return nil
	}, scheduler.WithName(snapshotTaskName), scheduler.WithPriority(scheduler.PriorityLow))

	err := future.Wait(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.status.Error = err
		if r.status.State == models.RecorderStateRunning {
			r.status.State = models.RecorderStateError
		}
		return err
	}
	r.status.Error = nil
	if r.status.State == models.RecorderStateError {
		r.status.State = models.RecorderStateRunning
	}
	r.status.Snapshots++
	r.status.LastSnapshotID = snapshotID
	r.status.LastSnapshotAt = takenAt
	return nil
}

// ToRecords converts scheduler statistics into store records.
func ToRecords(stats map[string]scheduler.PoolStatistics) []models.StatisticsRecord {
	records := make([]models.StatisticsRecord, 0, len(stats))
	for pool, ps := range stats {
		records = append(records, models.StatisticsRecord{
			Pool:                   pool,
			Submitted:              ps.Submitted,
			Completed:              ps.Completed,
			Failed:                 ps.Failed,
			Abandoned:              ps.Abandoned,
			Rejected:               ps.Rejected,
			TotalExecutionTimeMs:   ps.TotalExecutionTimeMs,
			AverageExecutionTimeMs: ps.AverageExecutionTimeMs,
			CountsByTaskName:       ps.CountsByTaskName,
		})
	}
	return records
}
