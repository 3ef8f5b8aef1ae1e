package scheduler

import "time"

// Metrics receives scheduler events. Implementations must be cheap and
// non-blocking, they are called from worker goroutines.
type Metrics interface {
	RecordTaskDuration(pool string, priority Priority, d time.Duration)
	RecordTaskFailure(pool string, panicked bool)
	RecordTaskRejected(pool string, reason string)
	RecordQueueDepth(pool string, depth int)
	RecordWorkers(pool string, workers int)
}

type nilMetrics struct{}

func (nilMetrics) RecordTaskDuration(string, Priority, time.Duration) {}
func (nilMetrics) RecordTaskFailure(string, bool)                     {}
func (nilMetrics) RecordTaskRejected(string, string)                  {}
func (nilMetrics) RecordQueueDepth(string, int)                       {}
func (nilMetrics) RecordWorkers(string, int)                          {}
