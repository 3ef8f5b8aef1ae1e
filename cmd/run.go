package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/task-scheduler/api/v1"
	"github.com/kubev2v/task-scheduler/internal/config"
	"github.com/kubev2v/task-scheduler/internal/handlers"
	"github.com/kubev2v/task-scheduler/internal/metrics"
	"github.com/kubev2v/task-scheduler/internal/server"
	"github.com/kubev2v/task-scheduler/internal/services"
	"github.com/kubev2v/task-scheduler/internal/store"
	"github.com/kubev2v/task-scheduler/pkg/scheduler"
)

const databaseFile = "scheduler.duckdb"

func NewRunCommand(cfg *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the scheduler and its HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "Server mode: dev or prod")
	flags.IntVar(&cfg.Server.HTTPPort, "http-port", cfg.Server.HTTPPort, "HTTP API port")
	flags.StringVar(&cfg.Server.AuthPublicKeyFile, "auth-public-key", cfg.Server.AuthPublicKeyFile, "PEM RSA public key; when set the API requires RS256 bearer tokens")
	flags.IntVar(&cfg.Scheduler.DefaultPoolThreads, "default-pool-threads", cfg.Scheduler.DefaultPoolThreads, "Workers split between the main and compute pools")
	flags.IntVar(&cfg.Scheduler.MaxTotalThreads, "max-total-threads", cfg.Scheduler.MaxTotalThreads, "Cap on workers across all pools, 0 disables it")
	flags.DurationVar(&cfg.Scheduler.ShutdownTimeout, "shutdown-timeout", cfg.Scheduler.ShutdownTimeout, "Time allowed for a graceful shutdown")
	flags.DurationVar(&cfg.Store.SnapshotInterval, "snapshot-interval", cfg.Store.SnapshotInterval, "Interval between statistics snapshots")
	flags.DurationVar(&cfg.Store.Retention, "retention", cfg.Store.Retention, "Age after which snapshots are pruned, 0 keeps everything")
	flags.BoolVar(&cfg.Metrics.Enabled, "metrics", cfg.Metrics.Enabled, "Export Prometheus metrics on /metrics")
	flags.StringVar(&cfg.Metrics.Namespace, "metrics-namespace", cfg.Metrics.Namespace, "Prometheus metrics namespace")

	return cmd
}

func run(ctx context.Context, cfg *config.Configuration) error {
	logger := zap.S().Named("run")
	logger.Infow("starting task scheduler", "config", cfg.DebugMap())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Store.DataFolder)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	var schedOpts []scheduler.Option
	if cfg.Metrics.Enabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		exporter, err := metrics.NewExporter(cfg.Metrics.Namespace, reg, metrics.ExporterOptions{})
		if err != nil {
			return fmt.Errorf("failed to create metrics exporter: %w", err)
		}
		schedOpts = append(schedOpts, scheduler.WithMetrics(exporter))
	}

	sched := scheduler.NewScheduler(schedOpts...)
	if err := sched.Initialize(cfg.Scheduler.DefaultPoolThreads, cfg.Scheduler.MaxTotalThreads); err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.RegisterSchedulerGauges(cfg.Metrics.Namespace, reg, sched); err != nil {
			sched.Shutdown()
			return err
		}
	}

	poolSrv := services.NewPoolService(sched, st)
	restored, err := poolSrv.Restore(ctx)
	if err != nil {
		logger.Warnw("failed to restore pools", "error", err)
	}
	logger.Infow("pools ready", "pools", sched.PoolNames(), "restored", restored)

	recorder := services.NewStatsRecorder(sched, st.Statistics(), cfg.Store.SnapshotInterval, cfg.Store.Retention)
	recorder.Start(ctx)

	h := handlers.New(poolSrv, services.NewHistoryService(st), recorder)
	var srvOpts []server.Option
	if cfg.Metrics.Enabled {
		srvOpts = append(srvOpts, server.WithMetricsGatherer(reg))
	}
	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		v1.RegisterHandlers(router, h)
	}, srvOpts...)
	if err != nil {
		recorder.Stop()
		sched.Shutdown()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Errorw("http server failed", "error", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warnw("http server did not stop cleanly", "error", err)
	}

	recorder.Stop()
	if err := recorder.Snapshot(shutdownCtx); err != nil {
		logger.Warnw("final statistics snapshot failed", "error", err)
	}

	done := make(chan struct{})
	go func() {
		sched.Shutdown()
		close(done)
	}()
	select {
	case <-done:
		logger.Infow("scheduler stopped", "efficiency", sched.OverallEfficiency(), "submitted", sched.TotalSubmitted())
	case <-shutdownCtx.Done():
		logger.Warnw("scheduler shutdown timed out", "active", sched.ActiveCount())
	}

	return serveErr
}

func openStore(ctx context.Context, dataFolder string) (*store.Store, error) {
	path := ":memory:"
	if dataFolder != "" {
		if err := os.MkdirAll(dataFolder, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data folder: %w", err)
		}
		path = filepath.Join(dataFolder, databaseFile)
	}

	db, err := store.NewDB(path)
	if err != nil {
		return nil, err
	}
	st := store.NewStore(db)
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return st, nil
}
