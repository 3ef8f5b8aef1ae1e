package scheduler

import (
	"maps"
	"sync"
	"time"
)

// PoolStatistics is a point-in-time copy of a pool's counters.
//
// Submitted counts the tasks a worker finished (successfully or not), so
// AverageExecutionTimeMs*Submitted always equals TotalExecutionTimeMs.
// Tasks that never reached a worker show up in Abandoned or Rejected.
type PoolStatistics struct {
	Submitted              uint64
	Completed              uint64
	Failed                 uint64
	Abandoned              uint64
	Rejected               uint64
	TotalExecutionTimeMs   float64
	AverageExecutionTimeMs float64
	CountsByTaskName       map[string]uint64
}

func (p PoolStatistics) clone() PoolStatistics {
	p.CountsByTaskName = maps.Clone(p.CountsByTaskName)
	if p.CountsByTaskName == nil {
		p.CountsByTaskName = map[string]uint64{}
	}
	return p
}

// Statistics holds per-pool counters behind its own mutex, separate from
// any pool lock.
type Statistics struct {
	mu    sync.Mutex
	pools map[string]*PoolStatistics
}

func NewStatistics() *Statistics {
	return &Statistics{pools: make(map[string]*PoolStatistics)}
}

func (s *Statistics) entry(pool string) *PoolStatistics {
	ps, ok := s.pools[pool]
	if !ok {
		ps = &PoolStatistics{CountsByTaskName: make(map[string]uint64)}
		s.pools[pool] = ps
	}
	return ps
}

func (s *Statistics) RecordCompletion(pool, taskName string, d time.Duration, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps := s.entry(pool)
	ps.Submitted++
	if success {
		ps.Completed++
	} else {
		ps.Failed++
	}
	ps.TotalExecutionTimeMs += float64(d) / float64(time.Millisecond)
	ps.AverageExecutionTimeMs = ps.TotalExecutionTimeMs / float64(ps.Submitted)
	ps.CountsByTaskName[taskName]++
}

func (s *Statistics) RecordAbandoned(pool string, n int) {
	if n == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(pool).Abandoned += uint64(n)
}

func (s *Statistics) RecordRejected(pool string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(pool).Rejected++
}

func (s *Statistics) Snapshot(pool string) (PoolStatistics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.pools[pool]
	if !ok {
		return PoolStatistics{}, false
	}
	return ps.clone(), true
}

func (s *Statistics) SnapshotAll() map[string]PoolStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make(map[string]PoolStatistics, len(s.pools))
	for name, ps := range s.pools {
		all[name] = ps.clone()
	}
	return all
}

// TotalCompleted sums Completed across every pool.
func (s *Statistics) TotalCompleted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total uint64
	for _, ps := range s.pools {
		total += ps.Completed
	}
	return total
}
