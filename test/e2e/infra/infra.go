package infra

import "time"

// InfraManager abstracts the scheduler lifecycle for e2e tests.
// Process: runs the run command inside the test binary.
// External: no-op, the scheduler is started elsewhere.
type InfraManager interface {
	StartScheduler(cfg SchedulerConfig) (string, error)
	StopScheduler() error
	GenerateToken(subject string) (string, error)
}

// SchedulerConfig holds the settings of one scheduler instance.
type SchedulerConfig struct {
	DataFolder       string
	SnapshotInterval time.Duration
	Auth             bool
}

const TokenTTL = time.Hour
