package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kubev2v/task-scheduler/internal/models"
	srvErrors "github.com/kubev2v/task-scheduler/pkg/errors"
)

// PoolStore persists the definitions of pools created at runtime so they
// can be recreated on the next start.
type PoolStore struct {
	db QueryInterceptor
}

func NewPoolStore(db QueryInterceptor) *PoolStore {
	return &PoolStore{db: db}
}

func (s *PoolStore) Get(ctx context.Context, name string) (*models.PoolDefinition, error) {
	row := s.db.QueryRowContext(ctx, queryGetPool, name)

	var def models.PoolDefinition
	err := row.Scan(&def.Name, &def.Workers, &def.Ordering, &def.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewPoolNotFoundError(name)
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *PoolStore) List(ctx context.Context) ([]models.PoolDefinition, error) {
	rows, err := s.db.QueryContext(ctx, queryListPools)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []models.PoolDefinition
	for rows.Next() {
		var def models.PoolDefinition
		if err := rows.Scan(&def.Name, &def.Workers, &def.Ordering, &def.CreatedAt); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// Save inserts or updates the definition.
func (s *PoolStore) Save(ctx context.Context, def models.PoolDefinition) error {
	_, err := s.db.ExecContext(ctx, queryUpsertPool, def.Name, def.Workers, def.Ordering)
	return err
}

// Delete is a no-op for unknown names.
func (s *PoolStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, queryDeletePool, name)
	return err
}
