package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	v1 "github.com/kubev2v/task-scheduler/api/v1"
	"github.com/kubev2v/task-scheduler/pkg/client"
)

const requestTimeout = 10 * time.Second

// TokenGenerator is a function that generates a JWT token for a subject.
type TokenGenerator func(subject string) (string, error)

// SchedulerSvc wraps the API client with a per request timeout.
type SchedulerSvc struct {
	api      *client.Client
	tokenGen TokenGenerator
}

// NewSchedulerSvc creates a SchedulerSvc sending no token.
// The tokenGen function is typically infraManager.GenerateToken.
func NewSchedulerSvc(baseURL string, tokenGen TokenGenerator) *SchedulerSvc {
	zap.S().Infow("Initializing SchedulerSvc", "url", baseURL)
	return &SchedulerSvc{
		api:      client.NewClient(baseURL, "", client.WithHTTPClient(&http.Client{Timeout: requestTimeout})),
		tokenGen: tokenGen,
	}
}

// WithAuthSubject generates a token for subject and returns a SchedulerSvc
// that injects it into all subsequent requests.
func (s *SchedulerSvc) WithAuthSubject(subject string) (*SchedulerSvc, error) {
	token, err := s.tokenGen(subject)
	if err != nil {
		return nil, err
	}
	return &SchedulerSvc{api: s.api.WithToken(token), tokenGen: s.tokenGen}, nil
}

// StatusCode returns the HTTP status carried by err.
func StatusCode(err error) int {
	return client.StatusCode(err)
}

func (s *SchedulerSvc) ListPools() (*v1.PoolList, error) {
	ctx, cancel := s.context()
	defer cancel()
	return s.api.ListPools(ctx)
}

func (s *SchedulerSvc) GetPool(name string) (*v1.Pool, error) {
	ctx, cancel := s.context()
	defer cancel()
	return s.api.GetPool(ctx, name)
}

func (s *SchedulerSvc) CreatePool(name string, workers int, ordering v1.PoolOrdering) (*v1.Pool, error) {
	ctx, cancel := s.context()
	defer cancel()
	return s.api.CreatePool(ctx, name, workers, ordering)
}

func (s *SchedulerSvc) ResizePool(name string, workers int) (*v1.Pool, error) {
	ctx, cancel := s.context()
	defer cancel()
	return s.api.ResizePool(ctx, name, workers)
}

func (s *SchedulerSvc) PausePool(name string) (*v1.Pool, error) {
	ctx, cancel := s.context()
	defer cancel()
	return s.api.PausePool(ctx, name)
}

func (s *SchedulerSvc) ResumePool(name string) (*v1.Pool, error) {
	ctx, cancel := s.context()
	defer cancel()
	return s.api.ResumePool(ctx, name)
}

func (s *SchedulerSvc) DeletePool(name string) error {
	ctx, cancel := s.context()
	defer cancel()
	return s.api.DeletePool(ctx, name)
}

func (s *SchedulerSvc) Efficiency() (*v1.Efficiency, error) {
	ctx, cancel := s.context()
	defer cancel()
	return s.api.Efficiency(ctx)
}

func (s *SchedulerSvc) History(pools ...string) (*v1.HistoryListResponse, error) {
	ctx, cancel := s.context()
	defer cancel()
	return s.api.History(ctx, pools...)
}

func (s *SchedulerSvc) RecorderStatus() (*v1.RecorderStatus, error) {
	ctx, cancel := s.context()
	defer cancel()
	return s.api.RecorderStatus(ctx)
}

func (s *SchedulerSvc) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
