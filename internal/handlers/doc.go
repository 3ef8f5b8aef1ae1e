// Package handlers implements the HTTP API of the task scheduler.
//
// Handlers validate requests, call the services layer and map results and
// errors to HTTP responses. They hold no state of their own.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Request binding and validation                               │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion (api/v1)                             │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Services Layer                             │
//	│  PoolService │ HistoryService │ StatsRecorder                   │
//	└─────────────────────────────────────────────────────────────────┘
//
// Handler implements v1.ServerInterface and is mounted with:
//
//	v1.RegisterHandlers(router, handler)
//
// # API Endpoints
//
// Pool Endpoints (pools.go):
//
//	┌────────┬──────────────────────┬──────────────────────────────────────┐
//	│ Method │ Endpoint             │ Description                          │
//	├────────┼──────────────────────┼──────────────────────────────────────┤
//	│ GET    │ /pools               │ List pools with statistics           │
//	│ POST   │ /pools               │ Create a pool                        │
//	│ GET    │ /pools/{name}        │ Get one pool                         │
//	│ DELETE │ /pools/{name}        │ Destroy a pool                       │
//	│ PUT    │ /pools/{name}/size   │ Resize a pool                        │
//	│ POST   │ /pools/{name}/pause  │ Stop dequeuing                       │
//	│ POST   │ /pools/{name}/resume │ Resume dequeuing                     │
//	│ GET    │ /efficiency          │ Completed over submitted             │
//	└────────┴──────────────────────┴──────────────────────────────────────┘
//
// History Endpoints (history.go):
//
//	┌────────┬───────────┬─────────────────────────────────────────────────┐
//	│ Method │ Endpoint  │ Description                                     │
//	├────────┼───────────┼─────────────────────────────────────────────────┤
//	│ GET    │ /history  │ Stored snapshots, newest first, paginated       │
//	│ GET    │ /recorder │ Statistics recorder status                      │
//	└────────┴───────────┴─────────────────────────────────────────────────┘
//
// POST /pools request:
//
//	{ "name": "ocr", "workers": 4, "ordering": "priority" }
//
// workers is required on both pool requests; an explicit 0 is allowed.
// ordering is optional and defaults to "fifo".
//
// PUT /pools/{name}/size request:
//
//	{ "workers": 2 }
//
// GET /history query parameters:
//
//	┌──────────┬──────────┬───────────────────────────────────────────┐
//	│ Parameter│ Type     │ Description                               │
//	├──────────┼──────────┼───────────────────────────────────────────┤
//	│ pool     │ []string │ Filter by pool names (OR logic)           │
//	│ since    │ RFC3339  │ Snapshots taken at or after               │
//	│ until    │ RFC3339  │ Snapshots taken before                    │
//	│ page     │ int      │ Page number (default: 1)                  │
//	│ pageSize │ int      │ Items per page (default: 20, max: 100)    │
//	└──────────┴──────────┴───────────────────────────────────────────┘
//
// # Error Mapping
//
//	┌───────────────────────────┬────────────────────────────┐
//	│ Error                     │ Status                     │
//	├───────────────────────────┼────────────────────────────┤
//	│ PoolNotFoundError         │ 404 Not Found              │
//	│ PoolExistsError           │ 409 Conflict               │
//	│ InvalidPoolSizeError      │ 400 Bad Request            │
//	│ ThreadLimitError          │ 422 Unprocessable Entity   │
//	│ SchedulerClosedError      │ 503 Service Unavailable    │
//	│ anything else             │ 500, logged                │
//	└───────────────────────────┴────────────────────────────┘
package handlers
