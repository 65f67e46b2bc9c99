package infra

import (
	"fmt"
	"os"

	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/test"
)

// FakeInfraManager writes the scripted tools into a scratch directory. Every
// tool is available; the libvirt domain "e2e-guest" is defined and shut off.
type FakeInfraManager struct {
	cfg Config
	dir string
	env *checkpoint.Env
}

func NewFakeInfraManager(cfg Config) (*FakeInfraManager, error) {
	dir, err := os.MkdirTemp(cfg.WorkDir, "virt-harness-e2e-fake-")
	if err != nil {
		return nil, fmt.Errorf("failed to create fake tool directory: %w", err)
	}
	env, err := test.FakeEnv(dir, "e2e-guest")
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if cfg.Backend != "" {
		env.Backend = cfg.Backend
	}
	return &FakeInfraManager{cfg: cfg, dir: dir, env: env}, nil
}

func (f *FakeInfraManager) Env() (*checkpoint.Env, error) {
	return f.env, nil
}

func (f *FakeInfraManager) Available(string) bool {
	return true
}

func (f *FakeInfraManager) Cleanup() error {
	if f.cfg.KeepWorkDir {
		return nil
	}
	return os.RemoveAll(f.dir)
}
