package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
)

type Server struct {
	ServerMode string `default:"dev"`
	HTTPPort   int    `default:"8000"`
	// AuthPublicKeyFile enables bearer token authentication of the API.
	AuthPublicKeyFile string
}

type Scheduler struct {
	DefaultPoolThreads int           `default:"8"`
	MaxTotalThreads    int           `default:"32"`
	ShutdownTimeout    time.Duration `default:"30s"`
}

type Store struct {
	// DataFolder holds the statistics database. Empty keeps it in memory.
	DataFolder       string
	SnapshotInterval time.Duration `default:"1m"`
	// Retention drops snapshots older than this. Zero keeps everything.
	Retention time.Duration `default:"168h"`
}

type Metrics struct {
	Enabled   bool   `default:"true"`
	Namespace string `default:"task_scheduler"`
}

type Configuration struct {
	Server    Server
	Scheduler Scheduler
	Store     Store
	Metrics   Metrics
	LogFormat string `default:"console"`
	LogLevel  string `default:"info"`
}

// NewConfigurationWithDefaults returns a configuration populated from the
// default struct tags.
func NewConfigurationWithDefaults() *Configuration {
	c := &Configuration{}
	if err := defaults.Set(c); err != nil {
		// tags are static, a failure here is a programming error
		panic(fmt.Sprintf("invalid configuration defaults: %v", err))
	}
	return c
}

func (c *Configuration) Validate() error {
	var errs []error
	if c.Server.ServerMode != "dev" && c.Server.ServerMode != "prod" {
		errs = append(errs, fmt.Errorf("invalid server mode %q: must be 'dev' or 'prod'", c.Server.ServerMode))
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid http port %d", c.Server.HTTPPort))
	}
	if c.Scheduler.DefaultPoolThreads <= 0 {
		errs = append(errs, fmt.Errorf("default pool threads must be positive, got %d", c.Scheduler.DefaultPoolThreads))
	}
	if c.Scheduler.MaxTotalThreads < 0 {
		errs = append(errs, fmt.Errorf("max total threads must not be negative, got %d", c.Scheduler.MaxTotalThreads))
	}
	if c.Store.SnapshotInterval < time.Second {
		errs = append(errs, fmt.Errorf("snapshot interval %s is below one second", c.Store.SnapshotInterval))
	}
	if c.Store.Retention < 0 {
		errs = append(errs, fmt.Errorf("retention must not be negative, got %s", c.Store.Retention))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'console' or 'json'", c.LogFormat))
	}
	return errors.Join(errs...)
}

// DebugMap returns the configuration as a flat map for structured logging.
func (c *Configuration) DebugMap() map[string]any {
	return map[string]any{
		"server.mode":                c.Server.ServerMode,
		"server.http_port":           c.Server.HTTPPort,
		"server.auth":                c.Server.AuthPublicKeyFile != "",
		"scheduler.default_threads":  c.Scheduler.DefaultPoolThreads,
		"scheduler.max_threads":      c.Scheduler.MaxTotalThreads,
		"scheduler.shutdown_timeout": c.Scheduler.ShutdownTimeout.String(),
		"store.data_folder":          c.Store.DataFolder,
		"store.snapshot_interval":    c.Store.SnapshotInterval.String(),
		"store.retention":            c.Store.Retention.String(),
		"metrics.enabled":            c.Metrics.Enabled,
		"metrics.namespace":          c.Metrics.Namespace,
		"log_format":                 c.LogFormat,
		"log_level":                  c.LogLevel,
	}
}
