package infra

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/pkg/checkpoint"
)

// HostInfraManager runs the suites against the tools found on PATH. Nothing
// is started or stopped; tools that are missing make their tests skip.
type HostInfraManager struct {
	cfg     Config
	workDir string
	paths   map[string]string
}

func NewHostInfraManager(cfg Config) (*HostInfraManager, error) {
	workDir, err := os.MkdirTemp(cfg.WorkDir, "virt-harness-e2e-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	paths := make(map[string]string)
	for _, tool := range []string{ToolGuestfish, ToolVirsh, ToolQemuImg, ToolV2V, ToolNbdkit} {
		path, err := exec.LookPath(tool)
		if err != nil {
			zap.S().Warnw("tool not found, its tests will be skipped", "tool", tool)
			continue
		}
		paths[tool] = path
	}

	return &HostInfraManager{cfg: cfg, workDir: workDir, paths: paths}, nil
}

func (h *HostInfraManager) Env() (*checkpoint.Env, error) {
	return &checkpoint.Env{
		Tools: checkpoint.Tools{
			Guestfish: h.paths[ToolGuestfish],
			Virsh:     h.paths[ToolVirsh],
			VirshURI:  h.cfg.VirshURI,
			QemuImg:   h.paths[ToolQemuImg],
			V2V:       h.paths[ToolV2V],
			Nbdkit:    h.paths[ToolNbdkit],
		},
		Backend:        h.cfg.Backend,
		WorkDir:        h.workDir,
		CommandTimeout: 20 * time.Minute,
		SessionTimeout: 5 * time.Minute,
	}, nil
}

func (h *HostInfraManager) Available(tool string) bool {
	_, ok := h.paths[tool]
	return ok
}

func (h *HostInfraManager) Cleanup() error {
	if h.cfg.KeepWorkDir {
		zap.S().Infow("keeping work directory", "path", h.workDir)
		return nil
	}
	return os.RemoveAll(h.workDir)
}
