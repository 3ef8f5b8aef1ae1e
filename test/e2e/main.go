package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/kubev2v/task-scheduler/test/e2e/infra"
)

type configuration struct {
	InfraMode      string // "process" or "external"
	SchedulerURL   string
	PrivateKeyPath string
	WorkDir        string
	KeepData       bool
}

var (
	cfg          configuration
	infraManager infra.InfraManager
)

func (c configuration) Validate() error {
	if c.InfraMode != "process" && c.InfraMode != "external" {
		return fmt.Errorf("invalid infra-mode %q: must be 'process' or 'external'", c.InfraMode)
	}
	if c.InfraMode == "external" {
		if c.SchedulerURL == "" {
			return errors.New("scheduler url is empty")
		}
		if _, err := url.Parse(c.SchedulerURL); err != nil {
			return fmt.Errorf("failed to parse scheduler url: %v", err)
		}
	}
	return nil
}

func main() {
	flag.StringVar(&cfg.InfraMode, "infra-mode", "process", "Infrastructure mode: 'process' (in the test binary) or 'external' (already running)")
	flag.StringVar(&cfg.SchedulerURL, "scheduler-url", "", "Base URL of an external scheduler")
	flag.StringVar(&cfg.PrivateKeyPath, "private-key", "", "RSA private key matching the external scheduler's --auth-public-key")
	flag.StringVar(&cfg.WorkDir, "work-dir", "", "Folder for keys and databases, a temporary one by default")
	flag.BoolVar(&cfg.KeepData, "keep-data", false, "Keep the work dir after test completion (useful for debugging)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("failed to validate configuration: %v", err)
	}

	if cfg.WorkDir == "" {
		dir, err := os.MkdirTemp("", "scheduler-e2e-")
		if err != nil {
			log.Fatalf("failed to create work dir: %v", err)
		}
		cfg.WorkDir = dir
	}
	if !cfg.KeepData {
		defer os.RemoveAll(cfg.WorkDir)
	}

	switch cfg.InfraMode {
	case "process":
		im, err := infra.NewProcessInfraManager(cfg.WorkDir)
		if err != nil {
			log.Fatalf("failed to create process infra manager: %v", err)
		}
		infraManager = im
	case "external":
		var issuer *infra.TokenIssuer
		if cfg.PrivateKeyPath != "" {
			issuer, err = infra.LoadTokenIssuer(cfg.PrivateKeyPath)
			if err != nil {
				log.Fatalf("failed to load private key: %v", err)
			}
		}
		infraManager = infra.NewExternalInfraManager(cfg.SchedulerURL, issuer)
	}

	RegisterFailHandler(Fail)
	ok := RunSpecs(&testing.T{}, "E2E Suite")
	if !cfg.KeepData {
		os.RemoveAll(cfg.WorkDir)
	}
	if !ok {
		os.Exit(1)
	}
}
