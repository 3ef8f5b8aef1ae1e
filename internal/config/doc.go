// Package config defines the configuration structure for the task scheduler.
//
// Configuration is organized into logical sections (Server, Scheduler, Store,
// Metrics). Defaults come from struct tags applied with creasty/defaults;
// the command line layer overrides them from flags, SCHEDULER_* environment
// variables or a config file.
//
// # Configuration Structure
//
//	Configuration
//	├── Server         - HTTP diagnostics API
//	├── Scheduler      - Default pool topology and limits
//	├── Store          - Statistics history storage
//	├── Metrics        - Prometheus exporter
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Server Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field            │ Default │ Description                            │
//	├──────────────────┼─────────┼────────────────────────────────────────┤
//	│ ServerMode       │ "dev"   │ Server mode: "prod" or "dev"           │
//	│ HTTPPort         │ 8000    │ HTTP server listen port                │
//	└──────────────────┴─────────┴────────────────────────────────────────┘
//
// # Scheduler Configuration
//
//	┌────────────────────┬─────────┬──────────────────────────────────────┐
//	│ Field              │ Default │ Description                          │
//	├────────────────────┼─────────┼──────────────────────────────────────┤
//	│ DefaultPoolThreads │ 8       │ Split between main and compute pools │
//	│ MaxTotalThreads    │ 32      │ Cap on workers across pools (0: none)│
//	│ ShutdownTimeout    │ 30s     │ Grace period for HTTP shutdown       │
//	└────────────────────┴─────────┴──────────────────────────────────────┘
//
// # Store Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────┐
//	│ Field            │ Default │ Description                            │
//	├──────────────────┼─────────┼────────────────────────────────────────┤
//	│ DataFolder       │ ""      │ Folder of the DuckDB file (in-memory)  │
//	│ SnapshotInterval │ 1m      │ Statistics snapshot period             │
//	└──────────────────┴─────────┴────────────────────────────────────────┘
//
// # Metrics Configuration
//
//	┌───────────┬──────────────────┬──────────────────────────────────────┐
//	│ Field     │ Default          │ Description                          │
//	├───────────┼──────────────────┼──────────────────────────────────────┤
//	│ Enabled   │ true             │ Serve /metrics                       │
//	│ Namespace │ "task_scheduler" │ Prometheus metric namespace          │
//	└───────────┴──────────────────┴──────────────────────────────────────┘
//
// # Usage Example
//
//	cfg := config.NewConfigurationWithDefaults()
//	cfg.Scheduler.DefaultPoolThreads = 4
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
