package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/test/e2e/infra"
)

type configuration struct {
	InfraMode   string // "host" or "fake"
	WorkDir     string
	Backend     string
	VirshURI    string
	Domain      string
	KeepWorkDir bool
}

var (
	cfg          configuration
	infraManager infra.InfraManager
)

func (c configuration) Validate() error {
	if c.InfraMode != "host" && c.InfraMode != "fake" {
		return fmt.Errorf("invalid infra-mode %q: must be 'host' or 'fake'", c.InfraMode)
	}
	if c.WorkDir != "" {
		if info, err := os.Stat(c.WorkDir); err != nil || !info.IsDir() {
			return fmt.Errorf("work directory %q does not exist", c.WorkDir)
		}
	}
	return nil
}

func main() {
	flag.StringVar(&cfg.InfraMode, "infra-mode", "host", "Infrastructure mode: 'host' (installed tools) or 'fake' (scripted tools)")
	flag.StringVar(&cfg.WorkDir, "work-dir", "", "Parent of the scratch directory (default: system temp dir)")
	flag.StringVar(&cfg.Backend, "backend", "direct", "LIBGUESTFS_BACKEND for guestfish sessions")
	flag.StringVar(&cfg.VirshURI, "virsh-uri", "test:///default", "libvirt connection URI")
	flag.StringVar(&cfg.Domain, "domain", "", "Existing shut off domain for the virsh tests (default: test driver's 'test' in host mode)")
	flag.BoolVar(&cfg.KeepWorkDir, "keep-work-dir", false, "Keep images after test completion (useful for debugging)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		log.Fatalf("failed to validate configuration: %v", err)
	}

	icfg := infra.Config{
		WorkDir:     cfg.WorkDir,
		Backend:     cfg.Backend,
		VirshURI:    cfg.VirshURI,
		KeepWorkDir: cfg.KeepWorkDir,
	}
	switch cfg.InfraMode {
	case "host":
		infraManager, err = infra.NewHostInfraManager(icfg)
	case "fake":
		infraManager, err = infra.NewFakeInfraManager(icfg)
	}
	if err != nil {
		log.Fatalf("failed to create infra manager: %v", err)
	}

	RegisterFailHandler(Fail)
	ok := RunSpecs(&testing.T{}, "E2E Suite")
	if err := infraManager.Cleanup(); err != nil {
		zap.S().Warnw("failed to clean up", "error", err)
	}
	if !ok {
		os.Exit(1)
	}
}
