/*
Package main provides end-to-end testing infrastructure for the task scheduler.

# Package Structure

	test/e2e/
	├── main.go          Entry point: flags, config, InfraManager setup, Ginkgo runner
	├── tests.go         Ginkgo test specs (auth, pools, history, restart)
	├── doc.go           This file
	├── infra/           Infrastructure management
	│   ├── infra.go     InfraManager interface + SchedulerConfig
	│   ├── process.go   ProcessInfraManager (run command inside the test binary)
	│   ├── external.go  ExternalInfraManager (no-op, externally managed)
	│   └── token.go     TokenIssuer (RSA key pair, RS256 tokens)
	└── service/
	    └── service.go   SchedulerSvc, pkg/client with timeouts and generated tokens

# InfraManager

	type InfraManager interface {
	    StartScheduler(cfg) / StopScheduler()
	    GenerateToken(subject)
	}

Two implementations:
  - ProcessInfraManager executes "task-scheduler run" on a free port in a
    goroutine. It writes the public key of its TokenIssuer into the work dir
    and passes it as --auth-public-key. Readiness is polled with backoff.
  - ExternalInfraManager returns the -scheduler-url as is. Tokens need the
    private key given with -private-key.

Selected via the -infra-mode flag ("process" or "external"). Restart specs
only run in process mode.

# Running

	go run ./test/e2e
	go run ./test/e2e -infra-mode external -scheduler-url http://localhost:8000 -private-key key.pem
	go run ./test/e2e -keep-data -work-dir /tmp/e2e
*/
package main
