package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/kubev2v/task-scheduler/internal/models"
	"github.com/kubev2v/task-scheduler/internal/store"
	srvErrors "github.com/kubev2v/task-scheduler/pkg/errors"
	"github.com/kubev2v/task-scheduler/pkg/scheduler"
)

// PoolView combines the live shape of a pool with its statistics.
type PoolView struct {
	Info  scheduler.PoolInfo
	Stats scheduler.PoolStatistics
}

// PoolService manages pools on behalf of the HTTP API. Pools created here
// are persisted and recreated by Restore on the next start.
type PoolService struct {
	sched *scheduler.Scheduler
	store *store.Store
}

func NewPoolService(s *scheduler.Scheduler, st *store.Store) *PoolService {
	return &PoolService{sched: s, store: st}
}

func (s *PoolService) List() ([]PoolView, error) {
	names := s.sched.PoolNames()
	views := make([]PoolView, 0, len(names))
	for _, name := range names {
		v, err := s.Get(name)
		if err != nil {
			// destroyed between PoolNames and Get
			if srvErrors.IsPoolNotFoundError(err) {
				continue
			}
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *PoolService) Get(name string) (*PoolView, error) {
	info, err := s.sched.PoolInfo(name)
	if err != nil {
		return nil, err
	}
	stats, err := s.sched.PoolStatistics(name)
	if err != nil {
		return nil, err
	}
	return &PoolView{Info: info, Stats: stats}, nil
}

// Create adds the pool to the scheduler and saves its definition. A pool
// that cannot be saved is destroyed again.
func (s *PoolService) Create(ctx context.Context, name string, workers int, ordering scheduler.Ordering) error {
	if err := s.sched.CreatePool(name, workers, scheduler.WithOrdering(ordering)); err != nil {
		return err
	}
	def := models.PoolDefinition{Name: name, Workers: workers, Ordering: ordering.String()}
	if err := s.store.Pools().Save(ctx, def); err != nil {
		zap.S().Named("pool_service").Warnw("failed to persist pool, destroying it", "pool", name, "error", err)
		if derr := s.sched.DestroyPool(name); derr != nil {
			zap.S().Named("pool_service").Errorw("failed to destroy unsaved pool", "pool", name, "error", derr)
		}
		return err
	}
	return nil
}

func (s *PoolService) Delete(ctx context.Context, name string) error {
	if err := s.sched.DestroyPool(name); err != nil {
		return err
	}
	return s.store.Pools().Delete(ctx, name)
}

// Resize updates the persisted worker count only for pools created through
// this service.
func (s *PoolService) Resize(ctx context.Context, name string, workers int) error {
	if err := s.sched.SetPoolSize(name, workers); err != nil {
		return err
	}
	def, err := s.store.Pools().Get(ctx, name)
	if err != nil {
		if srvErrors.IsResourceNotFoundError(err) {
			return nil
		}
		return err
	}
	def.Workers = workers
	return s.store.Pools().Save(ctx, *def)
}

func (s *PoolService) Pause(name string) error {
	return s.sched.PausePool(name)
}

func (s *PoolService) Resume(name string) error {
	return s.sched.ResumePool(name)
}

func (s *PoolService) Efficiency() (efficiency float64, submitted, active int64) {
	return s.sched.OverallEfficiency(), s.sched.TotalSubmitted(), s.sched.ActiveCount()
}

// Restore recreates the persisted pools. Pools that already exist or no
// longer fit the thread limit are skipped and logged.
func (s *PoolService) Restore(ctx context.Context) (int, error) {
	defs, err := s.store.Pools().List(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, def := range defs {
		ordering, err := scheduler.ParseOrdering(def.Ordering)
		if err != nil {
			zap.S().Named("pool_service").Warnw("skipping pool with unknown ordering", "pool", def.Name, "error", err)
			continue
		}
		if err := s.sched.CreatePool(def.Name, def.Workers, scheduler.WithOrdering(ordering)); err != nil {
			zap.S().Named("pool_service").Warnw("failed to restore pool", "pool", def.Name, "error", err)
			continue
		}
		restored++
	}
	return restored, nil
}
