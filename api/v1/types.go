package v1

import "time"

type PoolOrdering string

const (
	PoolOrderingFifo     PoolOrdering = "fifo"
	PoolOrderingPriority PoolOrdering = "priority"
)

type Pool struct {
	Name     string         `json:"name"`
	Workers  int            `json:"workers"`
	Queued   int            `json:"queued"`
	Running  int            `json:"running"`
	Paused   bool           `json:"paused"`
	Ordering PoolOrdering   `json:"ordering"`
	Stats    PoolStatistics `json:"stats"`
}

type PoolStatistics struct {
	Submitted              uint64            `json:"submitted"`
	Completed              uint64            `json:"completed"`
	Failed                 uint64            `json:"failed"`
	Abandoned              uint64            `json:"abandoned"`
	Rejected               uint64            `json:"rejected"`
	TotalExecutionTimeMs   float64           `json:"totalExecutionTimeMs"`
	AverageExecutionTimeMs float64           `json:"averageExecutionTimeMs"`
	CountsByTaskName       map[string]uint64 `json:"countsByTaskName"`
}

type PoolList struct {
	Pools []Pool `json:"pools"`
}

type CreatePoolRequest struct {
	Name     string        `json:"name" binding:"required"`
	Workers  *int          `json:"workers" binding:"required,min=0"`
	Ordering *PoolOrdering `json:"ordering,omitempty"`
}

type ResizePoolRequest struct {
	Workers *int `json:"workers" binding:"required,min=0"`
}

type Efficiency struct {
	Efficiency float64 `json:"efficiency"`
	Submitted  int64   `json:"submitted"`
	Active     int64   `json:"active"`
}

type HistoryRecord struct {
	SnapshotId             string            `json:"snapshotId"`
	TakenAt                time.Time         `json:"takenAt"`
	Pool                   string            `json:"pool"`
	Submitted              uint64            `json:"submitted"`
	Completed              uint64            `json:"completed"`
	Failed                 uint64            `json:"failed"`
	Abandoned              uint64            `json:"abandoned"`
	Rejected               uint64            `json:"rejected"`
	TotalExecutionTimeMs   float64           `json:"totalExecutionTimeMs"`
	AverageExecutionTimeMs float64           `json:"averageExecutionTimeMs"`
	CountsByTaskName       map[string]uint64 `json:"countsByTaskName"`
}

type HistoryListResponse struct {
	Page      int             `json:"page"`
	PageCount int             `json:"pageCount"`
	Total     int             `json:"total"`
	Records   []HistoryRecord `json:"records"`
}

type GetHistoryParams struct {
	Pool     *[]string  `form:"pool"`
	Since    *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until    *time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
	Page     *int       `form:"page"`
	PageSize *int       `form:"pageSize"`
}

type RecorderStatus struct {
	State          string     `json:"state"`
	Snapshots      int        `json:"snapshots"`
	LastSnapshotId *string    `json:"lastSnapshotId,omitempty"`
	LastSnapshotAt *time.Time `json:"lastSnapshotAt,omitempty"`
	Error          *string    `json:"error,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}
