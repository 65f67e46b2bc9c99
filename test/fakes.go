// Package test holds fakes shared by the package test suites: shell scripts
// standing in for guestfish, virsh, qemu-img, virt-v2v and nbdkit, plus an
// in-memory command runner.
package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
	"github.com/kubev2v/virt-harness/pkg/command"
)

// WriteTool writes an executable script named name into dir.
func WriteTool(dir, name, script string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil { //nolint:gosec
		return "", fmt.Errorf("failed to write fake %s: %w", name, err)
	}
	return path, nil
}

// FakeGuestfish reads guestfish commands on stdin. Augeas nodes and guest
// files live in memory for the lifetime of the process.
func FakeGuestfish(dir string) (string, error) {
	return WriteTool(dir, "guestfish", guestfishScript)
}

// FakeVirsh keeps domain states as files under dir. Domains listed in
// domains are defined and shut off.
func FakeVirsh(dir string, domains ...string) (string, error) {
	state := filepath.Join(dir, "virsh-state")
	if err := os.MkdirAll(state, 0o755); err != nil {
		return "", err
	}
	for _, d := range domains {
		if err := os.WriteFile(filepath.Join(state, d), []byte("shut off\n"), 0o644); err != nil { //nolint:gosec
			return "", err
		}
	}
	return WriteTool(dir, "virsh", strings.ReplaceAll(virshScript, "@STATE@", state))
}

func FakeQemuImg(dir string) (string, error) {
	return WriteTool(dir, "qemu-img", qemuImgScript)
}

func FakeV2V(dir string) (string, error) {
	return WriteTool(dir, "virt-v2v", v2vScript)
}

func FakeNbdkit(dir string) (string, error) {
	return WriteTool(dir, "nbdkit", "#!/usr/bin/env bash\n"+
		"if [ \"$1\" = --version ]; then echo 'nbdkit 1.36.1'; exit 0; fi\n"+
		"echo 'nbdkit: error: no plugin given' >&2\nexit 1\n")
}

// FailingTool exits with status after printing message to stderr, without
// reading its input.
func FailingTool(dir, name string, status int, message string) (string, error) {
	return WriteTool(dir, name, fmt.Sprintf("#!/usr/bin/env bash\necho %q >&2\nexit %d\n", message, status))
}

// MockRunner implements command.Runner without spawning anything. Results
// are looked up by tool name; unknown tools succeed with empty output.
type MockRunner struct {
	Results map[string]models.CommandResult
	Err     error

	mu    sync.Mutex
	calls []string
}

var _ command.Runner = (*MockRunner)(nil)

func NewMockRunner() *MockRunner {
	return &MockRunner{Results: map[string]models.CommandResult{}}
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (models.CommandResult, error) {
	line := command.Join(name, args...)

	m.mu.Lock()
	m.calls = append(m.calls, line)
	m.mu.Unlock()

	if m.Err != nil {
		return models.CommandResult{}, m.Err
	}
	res := m.Results[filepath.Base(name)]
	res.Command = line
	return res, nil
}

// Calls returns every command line run so far.
func (m *MockRunner) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// FakeEnv writes every fake tool into dir and returns a checkpoint
// environment using them, with scratch space under dir/work.
func FakeEnv(dir string, domains ...string) (*checkpoint.Env, error) {
	var (
		tools checkpoint.Tools
		err   error
	)
	if tools.Guestfish, err = FakeGuestfish(dir); err != nil {
		return nil, err
	}
	if tools.Virsh, err = FakeVirsh(dir, domains...); err != nil {
		return nil, err
	}
	if tools.QemuImg, err = FakeQemuImg(dir); err != nil {
		return nil, err
	}
	if tools.V2V, err = FakeV2V(dir); err != nil {
		return nil, err
	}
	if tools.Nbdkit, err = FakeNbdkit(dir); err != nil {
		return nil, err
	}
	tools.VirshURI = "test:///default"

	work := filepath.Join(dir, "work")
	if err := os.MkdirAll(work, 0o755); err != nil {
		return nil, err
	}
	return &checkpoint.Env{
		Tools:          tools,
		Backend:        "direct",
		WorkDir:        work,
		CommandTimeout: 30 * time.Second,
		SessionTimeout: 30 * time.Second,
	}, nil
}
