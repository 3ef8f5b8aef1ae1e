package v1

import (
	"github.com/kubev2v/task-scheduler/internal/models"
	"github.com/kubev2v/task-scheduler/internal/services"
	"github.com/kubev2v/task-scheduler/internal/util"
	"github.com/kubev2v/task-scheduler/pkg/scheduler"
)

// NewPoolFromView converts a services.PoolView to an API Pool.
func NewPoolFromView(v services.PoolView) Pool {
	return Pool{
		Name:     v.Info.Name,
		Workers:  v.Info.Workers,
		Queued:   v.Info.Queued,
		Running:  v.Info.Running,
		Paused:   v.Info.Paused,
		Ordering: PoolOrdering(v.Info.Ordering.String()),
		Stats:    NewPoolStatistics(v.Stats),
	}
}

func NewPoolStatistics(s scheduler.PoolStatistics) PoolStatistics {
	counts := s.CountsByTaskName
	if counts == nil {
		counts = map[string]uint64{}
	}
	return PoolStatistics{
		Submitted:              s.Submitted,
		Completed:              s.Completed,
		Failed:                 s.Failed,
		Abandoned:              s.Abandoned,
		Rejected:               s.Rejected,
		TotalExecutionTimeMs:   s.TotalExecutionTimeMs,
		AverageExecutionTimeMs: util.Round(s.AverageExecutionTimeMs),
		CountsByTaskName:       counts,
	}
}

func NewHistoryRecordFromModel(r models.StatisticsRecord) HistoryRecord {
	return HistoryRecord{
		SnapshotId:             r.SnapshotID,
		TakenAt:                r.TakenAt,
		Pool:                   r.Pool,
		Submitted:              r.Submitted,
		Completed:              r.Completed,
		Failed:                 r.Failed,
		Abandoned:              r.Abandoned,
		Rejected:               r.Rejected,
		TotalExecutionTimeMs:   r.TotalExecutionTimeMs,
		AverageExecutionTimeMs: util.Round(r.AverageExecutionTimeMs),
		CountsByTaskName:       r.CountsByTaskName,
	}
}

func NewRecorderStatus(status models.RecorderStatus) RecorderStatus {
	r := RecorderStatus{
		State:          string(status.State),
		Snapshots:      status.Snapshots,
		LastSnapshotId: util.PtrIfNotZero(status.LastSnapshotID),
	}
	if r.LastSnapshotId != nil {
		r.LastSnapshotAt = util.Ptr(status.LastSnapshotAt)
	}
	if status.Error != nil {
		r.Error = util.Ptr(status.Error.Error())
	}
	return r
}

// ParseOrdering converts the optional API ordering, fifo when absent.
func ParseOrdering(o *PoolOrdering) (scheduler.Ordering, error) {
	if o == nil {
		return scheduler.OrderFIFO, nil
	}
	return scheduler.ParseOrdering(string(*o))
}
