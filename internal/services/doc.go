// Package services implements the business logic layer of the task scheduler.
//
// Services sit between the HTTP handlers, the scheduler and the store. Each
// service owns one concern and keeps its own state where it has any.
//
// # Service Dependency Graph
//
//	Handlers (HTTP endpoints)
//	    │
//	    ▼
//	Services Layer
//	    ├── PoolService ─────► Scheduler, Store (pools)
//	    ├── HistoryService ──► Store (pool_statistics)
//	    ├── StatsRecorder ───► Scheduler (io pool), Store (pool_statistics)
//	    └── Pipeline ────────► Scheduler (capture, compute, io pools)
//
// # PoolService
//
// Front end of the scheduler pool table. Pools created through it are
// saved in the pools table and recreated by Restore on the next start.
// Resizing a persisted pool updates its row, resizing a default pool does not.
//
// # HistoryService
//
// Read-only access to stored snapshots with pool and time filters and
// pagination. Total is the count without limit and offset.
//
//	params := services.HistoryListParams{
//	    Pools: []string{"main"},
//	    Since: time.Now().Add(-time.Hour),
//	    Limit: 50,
//	}
//	result, err := historyService.List(ctx, params)
//
// # StatsRecorder
//
// Writes AllStatistics() to the store every interval. Each snapshot is a
// low priority task named "stats-snapshot" on the io pool, so recording
// shows up in the statistics it records.
//
// State Machine:
//
//	┌─────────┐  Start   ┌─────────┐  snapshot fails  ┌───────┐
//	│ Stopped │─────────►│ Running │─────────────────►│ Error │
//	└─────────┘          └─────────┘◄─────────────────└───────┘
//	     ▲                    │        snapshot ok        │
//	     └────────────────────┴───────────────────────────┘
//	                        Stop
//
// When a retention is set, every snapshot also prunes rows older than
// takenAt minus retention.
//
// # Pipeline
//
// Processes one frame per Process call through four stages, each a task
// named after the stage:
//
//	┌─────────┐    ┌───────────┐    ┌────────┐    ┌─────────┐
//	│ capture │───►│ recognize │───►│ detect │───►│ analyze │
//	└─────────┘    └───────────┘    └────────┘    └─────────┘
//	  capture         compute         compute         io
//
// The collaborators (FrameSource, TextRecognizer, EventDetector, Analyzer)
// are interfaces. Capture is retried inside its task with exponential
// backoff, three tries by default. Frames without an id get a UUID.
// A failing stage ends the run and its error is returned wrapped with the
// stage name.
//
// # Thread Safety
//
// StatsRecorder protects its status with a mutex and stops its loop through
// context cancellation. The other services are stateless.
package services
