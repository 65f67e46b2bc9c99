package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LaunchError is returned when an external tool could not be started or died
// right after starting.
type LaunchError struct {
	Tool       string
	ExitStatus int
	Output     string
	Err        error
}

func NewLaunchError(tool string, exitStatus int, output string, err error) *LaunchError {
	return &LaunchError{Tool: tool, ExitStatus: exitStatus, Output: output, Err: err}
}

func (e *LaunchError) Error() string {
	msg := fmt.Sprintf("failed to launch %s", e.Tool)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.ExitStatus != 0 {
		msg += fmt.Sprintf(" (exit status %d)", e.ExitStatus)
	}
	if e.Output != "" {
		msg += fmt.Sprintf(": output: %q", e.Output)
	}
	return msg
}

func (e *LaunchError) Unwrap() error { return e.Err }

func IsLaunchError(err error) bool {
	var e *LaunchError
	return errors.As(err, &e)
}

// SessionClosedError is returned by a session once Close has been called.
type SessionClosedError struct {
	Tool    string
	Command string
}

func NewSessionClosedError(tool, command string) *SessionClosedError {
	return &SessionClosedError{Tool: tool, Command: command}
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("%s session is closed: cannot run %q", e.Tool, e.Command)
}

func IsSessionClosedError(err error) bool {
	var e *SessionClosedError
	return errors.As(err, &e)
}

// ProcessFault reports a tool process that crashed or exceeded its deadline
// while a command was in flight. The process is always dead when this is returned.
type ProcessFault struct {
	Tool    string
	Command string
	Timeout time.Duration
	Output  string
	Err     error
}

func NewProcessFault(tool, command string, err error) *ProcessFault {
	return &ProcessFault{Tool: tool, Command: command, Err: err}
}

func NewProcessTimeout(tool, command string, timeout time.Duration, output string) *ProcessFault {
	return &ProcessFault{Tool: tool, Command: command, Timeout: timeout, Output: output}
}

func (e *ProcessFault) TimedOut() bool { return e.Timeout > 0 }

func (e *ProcessFault) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s fault while running %q", e.Tool, e.Command)
	if e.TimedOut() {
		fmt.Fprintf(&b, ": timed out after %s, process killed", e.Timeout)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Output != "" {
		fmt.Fprintf(&b, ": partial output: %q", e.Output)
	}
	return b.String()
}

func (e *ProcessFault) Unwrap() error { return e.Err }

func IsProcessFault(err error) bool {
	var e *ProcessFault
	return errors.As(err, &e)
}

// UnexpectedExitStatus is an assertion failure on a command exit status.
type UnexpectedExitStatus struct {
	Command       string
	ExitStatus    int
	ExpectFailure bool
	Stdout        string
	Stderr        string
}

func NewUnexpectedExitStatus(command string, exitStatus int, expectFailure bool, stdout, stderr string) *UnexpectedExitStatus {
	return &UnexpectedExitStatus{
		Command:       command,
		ExitStatus:    exitStatus,
		ExpectFailure: expectFailure,
		Stdout:        stdout,
		Stderr:        stderr,
	}
}

func (e *UnexpectedExitStatus) Error() string {
	want := "success"
	if e.ExpectFailure {
		want = "failure"
	}
	return fmt.Sprintf("%q: expected %s, got exit status %d: stdout: %q, stderr: %q",
		e.Command, want, e.ExitStatus, e.Stdout, e.Stderr)
}

func IsUnexpectedExitStatus(err error) bool {
	var e *UnexpectedExitStatus
	return errors.As(err, &e)
}

// OutputMismatch is an assertion failure on command output.
type OutputMismatch struct {
	Command string
	Mode    string
	Pattern string
	Actual  string
	Present bool
}

func NewOutputMismatch(command, mode, pattern, actual string, present bool) *OutputMismatch {
	return &OutputMismatch{Command: command, Mode: mode, Pattern: pattern, Actual: actual, Present: present}
}

func (e *OutputMismatch) Error() string {
	neg := ""
	if !e.Present {
		neg = "not "
	}
	return fmt.Sprintf("%q: expected output to %s%s %q, actual output: %q", e.Command, neg, e.Mode, e.Pattern, e.Actual)
}

func IsOutputMismatch(err error) bool {
	var e *OutputMismatch
	return errors.As(err, &e)
}

// UnknownCheckpointError is returned by the dispatcher for names missing from the registry.
type UnknownCheckpointError struct {
	Name  string
	Known []string
}

func NewUnknownCheckpointError(name string, known []string) *UnknownCheckpointError {
	return &UnknownCheckpointError{Name: name, Known: known}
}

func (e *UnknownCheckpointError) Error() string {
	return fmt.Sprintf("unknown checkpoint %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

func IsUnknownCheckpointError(err error) bool {
	var e *UnknownCheckpointError
	return errors.As(err, &e)
}

// UnsupportedError is returned when a fixture is requested with a value the
// preparer does not know how to build.
type UnsupportedError struct {
	Field     string
	Value     string
	Supported []string
}

func NewUnsupportedError(field, value string, supported []string) *UnsupportedError {
	return &UnsupportedError{Field: field, Value: value, Supported: supported}
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s %q: must be one of %s", e.Field, e.Value, strings.Join(e.Supported, ", "))
}

func IsUnsupportedError(err error) bool {
	var e *UnsupportedError
	return errors.As(err, &e)
}

// MissingParameterError lists every required test parameter that was not set.
type MissingParameterError struct {
	Keys []string
}

func NewMissingParameterError(keys ...string) *MissingParameterError {
	return &MissingParameterError{Keys: keys}
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing test parameters: %s", strings.Join(e.Keys, ", "))
}

func IsMissingParameterError(err error) bool {
	var e *MissingParameterError
	return errors.As(err, &e)
}

// ResourceNotFoundError is returned by the store when a record does not exist.
type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func NewRunNotFoundError(id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: "run", ID: id}
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// IsTestFailure reports whether err is an assertion failure, i.e. the tool
// under test misbehaved.
func IsTestFailure(err error) bool {
	return IsUnexpectedExitStatus(err) || IsOutputMismatch(err)
}

// IsHarnessFault reports whether err means the fixture itself broke.
func IsHarnessFault(err error) bool {
	return err != nil && !IsTestFailure(err)
}
