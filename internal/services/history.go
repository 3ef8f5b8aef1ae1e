package services

import (
	"context"
	"time"

	"github.com/kubev2v/task-scheduler/internal/models"
	"github.com/kubev2v/task-scheduler/internal/store"
)

type HistoryService struct {
	store *store.Store
}

func NewHistoryService(st *store.Store) *HistoryService {
	return &HistoryService{store: st}
}

type HistoryListParams struct {
	Pools  []string
	Since  time.Time
	Until  time.Time
	Limit  uint64
	Offset uint64
}

type HistoryListResult struct {
	Records []models.StatisticsRecord
	Total   int
}

func (s *HistoryService) List(ctx context.Context, params HistoryListParams) (*HistoryListResult, error) {
	opts := s.buildListOptions(params)

	records, err := s.store.Statistics().List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	// total without pagination
	countOpts := s.buildListOptions(HistoryListParams{
		Pools: params.Pools,
		Since: params.Since,
		Until: params.Until,
	})
	total, err := s.store.Statistics().Count(ctx, countOpts...)
	if err != nil {
		return nil, err
	}

	return &HistoryListResult{
		Records: records,
		Total:   total,
	}, nil
}

func (s *HistoryService) buildListOptions(params HistoryListParams) []store.ListOption {
	var opts []store.ListOption

	if len(params.Pools) > 0 {
		opts = append(opts, store.ByPools(params.Pools...))
	}
	if !params.Since.IsZero() {
		opts = append(opts, store.Since(params.Since))
	}
	if !params.Until.IsZero() {
		opts = append(opts, store.Until(params.Until))
	}
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	return opts
}
