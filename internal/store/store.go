package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/kubev2v/task-scheduler/internal/store/migrations"
)

const memoryDSN = ":memory:"

// NewDB opens the DuckDB database at path. ":memory:" or an empty path
// opens an in-memory database.
func NewDB(path string) (*sql.DB, error) {
	dsn := path
	if dsn == memoryDSN {
		dsn = ""
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb at %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb at %q: %w", path, err)
	}
	return db, nil
}

// Store provides access to all storage repositories.
type Store struct {
	db         *sql.DB
	statistics *StatisticsStore
	pools      *PoolStore
}

func NewStore(db *sql.DB) *Store {
	qi := NewQueryInterceptor(db)
	return &Store{
		db:         db,
		statistics: NewStatisticsStore(qi),
		pools:      NewPoolStore(qi),
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, s.db)
}

func (s *Store) Statistics() *StatisticsStore {
	return s.statistics
}

func (s *Store) Pools() *PoolStore {
	return s.pools
}

func (s *Store) Close() error {
	return s.db.Close()
}
