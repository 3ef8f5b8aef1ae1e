// Package server provides the HTTP server of the task scheduler.
//
// The server uses the Gin web framework. It serves the JSON API under
// /api/v1 and, when a Prometheus gatherer is given, the metrics endpoint.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                         HTTP Server                           │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Middleware Stack                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  Logger (request/response logging)                      │  │
//	│  │  Recovery (panic recovery with zap logging)             │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	├───────────────────────────────────────────────────────────────┤
//	│  /metrics           promhttp handler (optional)               │
//	│  /api/v1/...        handlers registered via callback          │
//	│  anything else      404 JSON error                            │
//	└───────────────────────────────────────────────────────────────┘
//
// # Server Modes
//
//	┌──────────┬──────────────────────────────┐
//	│ Mode     │ Gin mode                     │
//	├──────────┼──────────────────────────────┤
//	│ dev      │ debug, routes printed        │
//	│ prod     │ release                      │
//	└──────────┴──────────────────────────────┘
//
// # Server Lifecycle
//
//	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
//	    v1.RegisterHandlers(router, handler)
//	}, server.WithMetricsGatherer(registry))
//
//	go func() {
//	    if err := srv.Start(ctx); err != nil {
//	        zap.S().Errorw("server error", "error", err)
//	    }
//	}()
//
//	<-shutdownCh
//	srv.Stop(ctx)
//
// Start returns nil once Stop was called. Stop performs a graceful
// shutdown and waits for in-flight requests until its context ends.
//
// # Middleware
//
// Logger (middlewares.Logger) logs request start at debug level and request
// end at info level with method, path, query, IP, user-agent, status and
// latency, under the "http" logger name.
//
// Authenticator (middlewares.Authenticator) is mounted on /api/v1 when
// Server.AuthPublicKeyFile is set. It requires an RS256 bearer token signed
// by that key, with the "task-scheduler" audience and an expiry. /metrics
// stays open.
//
// Recovery (ginzap.RecoveryWithZap) turns handler panics into 500 responses
// and logs them with a stack trace.
package server
