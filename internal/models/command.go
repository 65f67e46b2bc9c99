package models

import (
	"fmt"
	"time"
)

// CommandResult is the outcome of one command issued to an external tool.
// A non-zero ExitStatus is a normal result; whether it is expected is decided
// by the caller.
type CommandResult struct {
	Command    string
	ExitStatus int
	Stdout     string
	Stderr     string
	Duration   time.Duration
}

func (r CommandResult) Failed() bool {
	return r.ExitStatus != 0
}

func (r CommandResult) String() string {
	return fmt.Sprintf("command: %q, exit status: %d, stdout: %q, stderr: %q",
		r.Command, r.ExitStatus, r.Stdout, r.Stderr)
}
