package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/kubev2v/task-scheduler/internal/models"
)

// StatisticsStore keeps the history of pool statistics snapshots.
type StatisticsStore struct {
	db QueryInterceptor
}

func NewStatisticsStore(db QueryInterceptor) *StatisticsStore {
	return &StatisticsStore{db: db}
}

// Save writes one row per record under a fresh snapshot id and returns it.
// All records share takenAt.
func (s *StatisticsStore) Save(ctx context.Context, takenAt time.Time, records []models.StatisticsRecord) (string, error) {
	snapshotID := uuid.NewString()
	if len(records) == 0 {
		return snapshotID, nil
	}

	builder := sq.Insert(statisticsTable).Columns(statisticsColumns...)
	for _, r := range records {
		counts, err := json.Marshal(r.CountsByTaskName)
		if err != nil {
			return "", fmt.Errorf("failed to encode task counts of pool %q: %w", r.Pool, err)
		}
		builder = builder.Values(
			snapshotID,
			takenAt.UTC(),
			r.Pool,
			int64(r.Submitted),
			int64(r.Completed),
			int64(r.Failed),
			int64(r.Abandoned),
			int64(r.Rejected),
			r.TotalExecutionTimeMs,
			r.AverageExecutionTimeMs,
			string(counts),
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("failed to save statistics snapshot: %w", err)
	}
	return snapshotID, nil
}

// List returns records newest first, then by pool name.
func (s *StatisticsStore) List(ctx context.Context, opts ...ListOption) ([]models.StatisticsRecord, error) {
	builder := sq.Select(statisticsColumns...).
		From(statisticsTable).
		OrderBy("taken_at DESC", "pool ASC")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.StatisticsRecord
	for rows.Next() {
		var (
			r                                                 models.StatisticsRecord
			submitted, completed, failed, abandoned, rejected int64
			counts                                            string
		)
		err := rows.Scan(
			&r.SnapshotID,
			&r.TakenAt,
			&r.Pool,
			&submitted,
			&completed,
			&failed,
			&abandoned,
			&rejected,
			&r.TotalExecutionTimeMs,
			&r.AverageExecutionTimeMs,
			&counts,
		)
		if err != nil {
			return nil, err
		}
		r.Submitted = uint64(submitted)
		r.Completed = uint64(completed)
		r.Failed = uint64(failed)
		r.Abandoned = uint64(abandoned)
		r.Rejected = uint64(rejected)
		r.CountsByTaskName = map[string]uint64{}
		if err := json.Unmarshal([]byte(counts), &r.CountsByTaskName); err != nil {
			return nil, fmt.Errorf("failed to decode task counts of pool %q: %w", r.Pool, err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

func (s *StatisticsStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From(statisticsTable)

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// Prune deletes the records taken before cutoff and returns how many went.
func (s *StatisticsStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := sq.Delete(statisticsTable).Where(sq.Lt{"taken_at": cutoff.UTC()}).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByPools(pools ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(pools) == 0 {
			return b
		}
		return b.Where(sq.Eq{"pool": pools})
	}
}

func BySnapshot(id string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if id == "" {
			return b
		}
		return b.Where(sq.Eq{"snapshot_id": id})
	}
}

func Since(t time.Time) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if t.IsZero() {
			return b
		}
		return b.Where(sq.GtOrEq{"taken_at": t.UTC()})
	}
}

func Until(t time.Time) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if t.IsZero() {
			return b
		}
		return b.Where(sq.Lt{"taken_at": t.UTC()})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if limit == 0 {
			return b
		}
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if offset == 0 {
			return b
		}
		return b.Offset(offset)
	}
}
