package store

const (
	statisticsTable = "pool_statistics"

	queryGetPool = `SELECT name, workers, ordering, created_at FROM pools WHERE name = ?`

	queryListPools = `SELECT name, workers, ordering, created_at FROM pools ORDER BY name`

	queryUpsertPool = `
		INSERT INTO pools (name, workers, ordering)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			workers = EXCLUDED.workers,
			ordering = EXCLUDED.ordering`

	queryDeletePool = `DELETE FROM pools WHERE name = ?`
)

var statisticsColumns = []string{
	"snapshot_id",
	"taken_at",
	"pool",
	"submitted",
	"completed",
	"failed",
	"abandoned",
	"rejected",
	"total_execution_ms",
	"average_execution_ms",
	"task_counts",
}
