package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/models"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/recorder"
)

const (
	DefaultTimeout       = 5 * time.Minute
	DefaultLaunchTimeout = 10 * time.Minute
	closeGracePeriod     = 5 * time.Second
	maxLineSize          = 4 * 1024 * 1024
)

// Session owns one interactive tool process. Commands are written to its
// stdin one per line, each followed by the dialect sentinel; the combined
// stdout/stderr stream is read back until the sentinel shows up.
//
// A Session is not meant to be shared: calls are serialized and complete in
// the order they were made.
type Session struct {
	dialect  Dialect
	timeout  time.Duration
	recorder recorder.Recorder
	log      *zap.SugaredLogger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  chan string
	exited chan struct{}
	// exitErr is only valid once exited is closed
	exitErr error

	mu      sync.Mutex
	closed  bool
	discard sync.Once
}

type Option func(*Session)

// WithTimeout sets the per-command timeout used when the context has no
// earlier deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

func WithRecorder(rec recorder.Recorder) Option {
	return func(s *Session) {
		s.recorder = rec
	}
}

// Start spawns the tool process and waits until it answers a first sentinel.
// No drives are added and nothing is launched.
func Start(ctx context.Context, dialect Dialect, env map[string]string, opts ...Option) (*Session, error) {
	s := &Session{
		dialect:  dialect,
		timeout:  DefaultTimeout,
		recorder: recorder.Nop{},
		log:      zap.S().Named("session").With("tool", dialect.Name),
		lines:    make(chan string, 256),
		exited:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	cmd := exec.Command(dialect.Binary, dialect.Args...)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, srvErrors.NewLaunchError(dialect.Name, -1, "", err)
	}
	// stdout and stderr share one pipe so error lines keep their position
	// relative to the sentinel
	r, w, err := os.Pipe()
	if err != nil {
		return nil, srvErrors.NewLaunchError(dialect.Name, -1, "", err)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, srvErrors.NewLaunchError(dialect.Name, -1, "", err)
	}
	_ = w.Close()

	s.cmd = cmd
	s.stdin = stdin
	go s.read(r)
	go func() {
		s.exitErr = cmd.Wait()
		close(s.exited)
	}()

	s.log.Infow("tool started", "binary", dialect.Binary, "args", dialect.Args, "pid", cmd.Process.Pid)

	hsCtx, cancel := context.WithTimeout(ctx, DefaultLaunchTimeout)
	defer cancel()
	if _, err := s.exchange(hsCtx, "", "handshake"); err != nil {
		var fault *srvErrors.ProcessFault
		if errors.As(err, &fault) {
			return nil, srvErrors.NewLaunchError(dialect.Name, s.exitStatus(), fault.Output, fault)
		}
		return nil, err
	}

	return s, nil
}

// Launch starts the tool, adds the configured drives and runs the dialect
// launch command. The returned result is the first setup step that failed or
// else the launch step; a failed result leaves the session open.
func Launch(ctx context.Context, dialect Dialect, cfg models.SessionConfig, opts ...Option) (*Session, models.CommandResult, error) {
	env := make(map[string]string, len(cfg.Env)+1)
	for k, v := range cfg.Env {
		env[k] = v
	}
	if cfg.Backend != "" && dialect.BackendEnv != "" {
		env[dialect.BackendEnv] = cfg.Backend
	}

	s, err := Start(ctx, dialect, env, opts...)
	if err != nil {
		return nil, models.CommandResult{}, err
	}

	steps := dialect.setup(cfg)
	var res models.CommandResult
	for _, step := range steps {
		launchCtx, cancel := context.WithTimeout(ctx, DefaultLaunchTimeout)
		res, err = s.Invoke(launchCtx, step.name, step.args...)
		cancel()
		if err != nil {
			s.Close()
			if srvErrors.IsProcessFault(err) {
				return nil, res, srvErrors.NewLaunchError(dialect.Name, s.exitStatus(), res.Stdout+res.Stderr, err)
			}
			return nil, res, err
		}
		if res.Failed() {
			s.log.Warnw("launch step failed", "command", res.Command, "stderr", res.Stderr)
			return s, res, nil
		}
	}

	return s, res, nil
}

// With launches a session, runs fn and closes the session on every path.
// A failed launch step is reported as a LaunchError.
func With(ctx context.Context, dialect Dialect, cfg models.SessionConfig, fn func(*Session) error, opts ...Option) error {
	s, res, err := Launch(ctx, dialect, cfg, opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	if res.Failed() {
		return srvErrors.NewLaunchError(dialect.Name, res.ExitStatus, res.Stderr, fmt.Errorf("%s failed", res.Command))
	}

	return fn(s)
}

// Invoke sends one command and waits for its output.
func (s *Session) Invoke(ctx context.Context, name string, args ...string) (models.CommandResult, error) {
	line := s.dialect.Format(name, args...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.CommandResult{}, srvErrors.NewSessionClosedError(s.dialect.Name, line)
	}

	res, err := s.exchange(ctx, s.dialect.CommandPrefix+line, line)
	// a command that killed the tool still belongs in the run log
	s.recorder.Command(res)
	return res, err
}

// Close terminates the tool process. It is safe to call more than once and
// never fails.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.dialect.Quit != "" {
		_, _ = io.WriteString(s.stdin, s.dialect.Quit+"\n")
	}
	_ = s.stdin.Close()

	select {
	case <-s.exited:
	case <-time.After(closeGracePeriod):
		s.log.Warnw("tool did not exit after quit, killing", "pid", s.cmd.Process.Pid)
		s.kill()
	}
	s.discardOutput()
	s.log.Infow("tool stopped", "pid", s.cmd.Process.Pid, "exit_status", s.exitStatus())
}

// Closed reports whether Close was called or the process died.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Pid returns the process id of the tool.
func (s *Session) Pid() int {
	return s.cmd.Process.Pid
}

func (s *Session) Tool() string {
	return s.dialect.Name
}

// exchange writes line (when not empty) plus a sentinel and collects output
// up to the sentinel. Any fault leaves the process dead and the session closed.
func (s *Session) exchange(ctx context.Context, line, label string) (models.CommandResult, error) {
	// whatever the tool printed before the handshake belongs to the handshake
	if line != "" {
		s.drain()
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		timeout = time.Until(deadline)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	marker := "__VH_" + strings.ReplaceAll(uuid.NewString(), "-", "") + "__"
	payload := s.dialect.Sentinel(marker) + "\n"
	if line != "" {
		payload = line + "\n" + payload
	}

	start := time.Now()
	res := models.CommandResult{Command: label}
	var stdout, stderr []string

	if _, err := io.WriteString(s.stdin, payload); err != nil {
		// the reader below sees the stream close once the process is gone
		s.log.Warnw("failed to write command", "command", label, "error", err)
	}

	for {
		select {
		case l, ok := <-s.lines:
			if !ok {
				s.fault()
				res.Stdout, res.Stderr = joinLines(stdout), joinLines(stderr)
				res.ExitStatus = -1
				res.Duration = time.Since(start)
				f := srvErrors.NewProcessFault(s.dialect.Name, label, fmt.Errorf("process exited with status %d", s.exitStatus()))
				f.Output = res.Stdout + res.Stderr
				return res, f
			}
			if l == marker {
				res.Stdout, res.Stderr = joinLines(stdout), joinLines(stderr)
				res.Duration = time.Since(start)
				if len(stderr) > 0 {
					res.ExitStatus = 1
				}
				return res, nil
			}
			if s.dialect.isError(l) {
				stderr = append(stderr, l)
			} else {
				stdout = append(stdout, l)
			}
		case <-timer.C:
			s.log.Errorw("command timed out, killing tool", "command", label, "timeout", timeout, "pid", s.cmd.Process.Pid)
			s.kill()
			s.fault()
			res.Stdout, res.Stderr = joinLines(stdout), joinLines(stderr)
			res.ExitStatus, res.Duration = -1, time.Since(start)
			return res, srvErrors.NewProcessTimeout(s.dialect.Name, label, timeout, joinLines(append(stdout, stderr...)))
		case <-ctx.Done():
			s.log.Errorw("command cancelled, killing tool", "command", label, "pid", s.cmd.Process.Pid)
			s.kill()
			s.fault()
			res.Stdout, res.Stderr = joinLines(stdout), joinLines(stderr)
			res.ExitStatus, res.Duration = -1, time.Since(start)
			return res, srvErrors.NewProcessFault(s.dialect.Name, label, ctx.Err())
		}
	}
}

func (s *Session) read(r *os.File) {
	defer close(s.lines)
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		s.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		s.log.Warnw("failed reading tool output", "error", err)
	}
}

// drain discards output produced between commands.
func (s *Session) drain() {
	for {
		select {
		case l, ok := <-s.lines:
			if !ok {
				return
			}
			s.log.Debugw("discarding unsolicited output", "line", l)
		default:
			return
		}
	}
}

// kill terminates the process group and waits until the process is reaped.
func (s *Session) kill() {
	_ = syscall.Kill(-s.cmd.Process.Pid, syscall.SIGKILL)
	<-s.exited
}

// fault marks the session closed after the process died or was killed.
func (s *Session) fault() {
	s.closed = true
	_ = s.stdin.Close()
	select {
	case <-s.exited:
	case <-time.After(closeGracePeriod):
		s.kill()
	}
	s.discardOutput()
}

// discardOutput unblocks the reader once nobody consumes lines anymore.
func (s *Session) discardOutput() {
	s.discard.Do(func() {
		go func() {
			for range s.lines {
			}
		}()
	})
}

func (s *Session) exitStatus() int {
	select {
	case <-s.exited:
	default:
		return 0
	}
	if s.exitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(s.exitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
