package models

import "time"

// StatisticsRecord is one pool's counters captured at TakenAt.
type StatisticsRecord struct {
	SnapshotID             string
	TakenAt                time.Time
	Pool                   string
	Submitted              uint64
	Completed              uint64
	Failed                 uint64
	Abandoned              uint64
	Rejected               uint64
	TotalExecutionTimeMs   float64
	AverageExecutionTimeMs float64
	CountsByTaskName       map[string]uint64
}

// SuccessRate is Completed over Submitted, 0 when nothing ran.
func (r StatisticsRecord) SuccessRate() float64 {
	if r.Submitted == 0 {
		return 0
	}
	return float64(r.Completed) / float64(r.Submitted)
}

// PoolDefinition is a pool created at runtime, as persisted.
type PoolDefinition struct {
	Name      string
	Workers   int
	Ordering  string
	CreatedAt time.Time
}
