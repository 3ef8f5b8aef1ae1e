package infra

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kubev2v/task-scheduler/cmd"
)

const (
	readyTimeout = 15 * time.Second
	stopTimeout  = 30 * time.Second
)

// ProcessInfraManager runs the scheduler's run command in a goroutine of the
// test binary, on a free local port.
type ProcessInfraManager struct {
	issuer  *TokenIssuer
	workDir string
	cancel  context.CancelFunc
	done    chan error
}

// NewProcessInfraManager keeps generated files such as the public key in workDir.
func NewProcessInfraManager(workDir string) (*ProcessInfraManager, error) {
	issuer, err := NewTokenIssuer()
	if err != nil {
		return nil, err
	}
	return &ProcessInfraManager{issuer: issuer, workDir: workDir}, nil
}

func (p *ProcessInfraManager) StartScheduler(cfg SchedulerConfig) (string, error) {
	if p.cancel != nil {
		return "", errors.New("scheduler already running")
	}

	port, err := freePort()
	if err != nil {
		return "", err
	}

	args := []string{
		"run",
		"--http-port", strconv.Itoa(port),
		"--server-mode", "prod",
		"--log-level", "warn",
	}
	if cfg.SnapshotInterval > 0 {
		args = append(args, "--snapshot-interval", cfg.SnapshotInterval.String())
	}
	if cfg.DataFolder != "" {
		args = append(args, "--data-folder", cfg.DataFolder)
	}
	if cfg.Auth {
		keyPath, err := p.issuer.WritePublicKey(p.workDir)
		if err != nil {
			return "", err
		}
		args = append(args, "--auth-public-key", keyPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	root := cmd.NewRootCommand()
	root.SetArgs(args)
	go func() {
		done <- root.ExecuteContext(ctx)
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	if err := waitReady(ctx, baseURL, done); err != nil {
		cancel()
		return "", err
	}

	p.cancel = cancel
	p.done = done
	zap.S().Infow("scheduler started", "url", baseURL, "args", args)
	return baseURL, nil
}

func (p *ProcessInfraManager) StopScheduler() error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	defer func() {
		p.cancel = nil
		p.done = nil
	}()

	select {
	case err := <-p.done:
		return err
	case <-time.After(stopTimeout):
		return errors.New("scheduler did not stop in time")
	}
}

func (p *ProcessInfraManager) GenerateToken(subject string) (string, error) {
	return p.issuer.GenerateToken(subject, TokenTTL)
}

// waitReady polls the API until it answers. Any HTTP status counts, the
// API may require a token. A command that exits early ends the wait.
func waitReady(ctx context.Context, baseURL string, done <-chan error) error {
	operation := func() (struct{}, error) {
		select {
		case err := <-done:
			if err == nil {
				err = errors.New("exited without error")
			}
			return struct{}{}, backoff.Permanent(fmt.Errorf("scheduler exited before ready: %w", err))
		default:
		}

		resp, err := http.Get(baseURL + "/api/v1/efficiency")
		if err != nil {
			return struct{}{}, err
		}
		_ = resp.Body.Close()
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(100*time.Millisecond)),
		backoff.WithMaxElapsedTime(readyTimeout),
	)
	return err
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find a free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
