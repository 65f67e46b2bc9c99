package checkpoint

import (
	"context"
	"time"

	"github.com/kubev2v/virt-harness/pkg/command"
	"github.com/kubev2v/virt-harness/pkg/recorder"
)

// Tools holds the paths of the external binaries under test.
type Tools struct {
	Guestfish string
	Virsh     string
	VirshURI  string
	QemuImg   string
	V2V       string
	Nbdkit    string
}

// SourceInventory is the vSphere side of the conversion checkpoints.
type SourceInventory interface {
	PowerState(ctx context.Context, vm string) (string, error)
	PowerOff(ctx context.Context, vm string) error
	ValidatePrivileges(ctx context.Context, vm string, privileges []string) error
}

// Env is shared by every run of a dispatcher.
type Env struct {
	Tools Tools
	// Backend is exported as LIBGUESTFS_BACKEND to guestfish.
	Backend string
	// WorkDir is the parent of the per run scratch directories.
	WorkDir        string
	CommandTimeout time.Duration
	SessionTimeout time.Duration
	// NewRunner builds the one-shot runner of a run. Nil means a local
	// ExecRunner.
	NewRunner func(rec recorder.Recorder) command.Runner
	// Source is nil when no vCenter is configured.
	Source    SourceInventory
	SourceURI string
}

func (e *Env) runner(rec recorder.Recorder) command.Runner {
	if e.NewRunner != nil {
		return e.NewRunner(rec)
	}
	return command.NewExecRunner(e.CommandTimeout).WithRecorder(rec)
}
