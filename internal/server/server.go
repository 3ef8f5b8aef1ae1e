package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kubev2v/task-scheduler/internal/config"
	"github.com/kubev2v/task-scheduler/internal/server/middlewares"
)

const (
	apiPrefix   = "/api/v1"
	metricsPath = "/metrics"
)

type Option func(*Server)

// WithMetricsGatherer exposes the gatherer on /metrics.
func WithMetricsGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

type Server struct {
	srv      *http.Server
	engine   *gin.Engine
	gatherer prometheus.Gatherer
}

// NewServer builds the router. registerHandlerFn receives the /api/v1 group.
func NewServer(cfg *config.Configuration, registerHandlerFn func(router *gin.RouterGroup), opts ...Option) (*Server, error) {
	if cfg.Server.ServerMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(
		middlewares.Logger(),
		ginzap.RecoveryWithZap(zap.L(), true),
	)

	if s.gatherer != nil {
		engine.GET(metricsPath, gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := engine.Group(apiPrefix)
	if cfg.Server.AuthPublicKeyFile != "" {
		key, err := middlewares.LoadPublicKey(cfg.Server.AuthPublicKeyFile)
		if err != nil {
			return nil, err
		}
		api.Use(middlewares.Authenticator(key))
	}
	registerHandlerFn(api)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	s.engine = engine
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks until the server stops. It returns nil after Stop.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	zap.S().Named("server").Infow("http server listening", "addr", ln.Addr().String())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop waits for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	zap.S().Named("server").Info("stopping http server")
	return s.srv.Shutdown(ctx)
}
