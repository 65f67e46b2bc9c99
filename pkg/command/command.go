// Package command runs one-shot external tools (virsh, qemu-img, virt-v2v,
// nbdkit) and captures their stdout, stderr and exit status.
package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/models"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/recorder"
)

const DefaultTimeout = 10 * time.Minute

// WaitDelay bounds how long Wait keeps reading pipes held open by orphaned
// grandchildren once the process itself is gone.
var WaitDelay = 2 * time.Second

type Runner interface {
	Run(ctx context.Context, name string, args ...string) (models.CommandResult, error)
}

// ExecRunner runs commands on the local host. A non-zero exit status is
// returned as a normal result; only a failure to start (LaunchError) or a
// timeout (ProcessFault) is an error.
type ExecRunner struct {
	// Timeout applies to every command; zero means DefaultTimeout.
	Timeout time.Duration
	// Env is appended to the current environment.
	Env []string
	Dir string

	recorder recorder.Recorder
}

func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout, recorder: recorder.Nop{}}
}

// WithRecorder returns a copy of the runner that logs every command to rec.
func (r *ExecRunner) WithRecorder(rec recorder.Recorder) *ExecRunner {
	c := *r
	c.recorder = rec
	return &c
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (models.CommandResult, error) {
	return r.RunWithPipe(ctx, nil, name, args...)
}

// RunWithPipe runs a command with stdin as an input.
func (r *ExecRunner) RunWithPipe(ctx context.Context, stdin io.Reader, name string, args ...string) (models.CommandResult, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	line := Join(name, args...)
	log := zap.S().Named("command")
	log.Debugw("running command", "command", line, "timeout", timeout)

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	// kill the whole process group so helper children (qemu, nbdkit) die too
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error { return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL) }
	cmd.WaitDelay = WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = stdin
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return models.CommandResult{}, srvErrors.NewLaunchError(name, -1, "", err)
	}

	err := cmd.Wait()
	res := models.CommandResult{
		Command:  line,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := runCtx.Err(); ctxErr != nil {
		log.Warnw("command killed", "command", line, "error", ctxErr)
		res.ExitStatus = -1
		r.recorder.Command(res)
		if errors.Is(ctxErr, context.DeadlineExceeded) && ctx.Err() == nil {
			return res, srvErrors.NewProcessTimeout(name, line, timeout, res.Stdout+res.Stderr)
		}
		return res, srvErrors.NewProcessFault(name, line, ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, srvErrors.NewProcessFault(name, line, err)
		}
		res.ExitStatus = exitErr.ExitCode()
	}

	log.Debugw("command finished", "command", line, "exit_status", res.ExitStatus, "duration", res.Duration)
	r.recorder.Command(res)
	return res, nil
}

// Join renders a command line for logs, quoting arguments with blanks.
func Join(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
