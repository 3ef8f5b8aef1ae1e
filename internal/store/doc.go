// Package store implements the data access layer of the task scheduler.
//
// Persistent storage uses DuckDB through database/sql. Queries with optional
// filters are built with squirrel, fixed ones live in queries.go.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│       StatisticsStore          │          PoolStore             │
//	│              ▼                 │             ▼                  │
//	│       pool_statistics          │           pools                │
//	├────────────────────────────────┴────────────────────────────────┤
//	│                 QueryInterceptor (debug logging)                │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Created by migrations (internal/store/migrations/sql/):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  pool_statistics   │  One row per pool per statistics snapshot   │
//	│  pools             │  Pools created at runtime, restored on boot │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # StatisticsStore
//
// Append-only history written by the statistics recorder. Each Save gets a
// new snapshot id shared by all of its rows. CountsByTaskName is stored as a
// JSON object in task_counts.
//
// Methods:
//   - Save(ctx, takenAt, records) → snapshot id
//   - List(ctx, opts...) → records, newest first
//   - Count(ctx, opts...)
//   - Prune(ctx, cutoff) → deleted rows
//
// List options compose as squirrel WHERE clauses:
//
//	records, err := s.Statistics().List(ctx,
//	    store.ByPools("main", "compute"),
//	    store.Since(time.Now().Add(-time.Hour)),
//	    store.WithLimit(100),
//	)
//
// # PoolStore
//
// Keyed by pool name. Save is an UPSERT so a resize can overwrite the
// worker count of an existing row. Get returns PoolNotFoundError for
// unknown names.
package store
