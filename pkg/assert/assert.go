// Package assert decides pass or fail for command results. Every evaluation
// is written to the run recorder, whatever the outcome.
package assert

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kubev2v/virt-harness/internal/models"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
	"github.com/kubev2v/virt-harness/pkg/params"
	"github.com/kubev2v/virt-harness/pkg/recorder"
)

const (
	ModeContain = "contain"
	ModeMatch   = "match"
	ModeEqual   = "equal"
)

type Comparator struct {
	rec recorder.Recorder
}

func New(rec recorder.Recorder) *Comparator {
	if rec == nil {
		rec = recorder.Nop{}
	}
	return &Comparator{rec: rec}
}

// ExitStatus fails with UnexpectedExitStatus when the result disagrees with
// expectFailure.
func (c *Comparator) ExitStatus(res models.CommandResult, expectFailure bool) error {
	ok := res.Failed() == expectFailure
	want := "succeed"
	if expectFailure {
		want = "fail"
	}
	c.rec.Assertion(fmt.Sprintf("%q should %s (exit status %d)", res.Command, want, res.ExitStatus), ok)
	if ok {
		return nil
	}
	return srvErrors.NewUnexpectedExitStatus(res.Command, res.ExitStatus, expectFailure, res.Stdout, res.Stderr)
}

// OutputContains looks for pattern as a substring of stdout and stderr.
func (c *Comparator) OutputContains(res models.CommandResult, pattern string, expectPresent bool) error {
	actual := output(res)
	return c.check(res, ModeContain, pattern, actual, strings.Contains(actual, pattern), expectPresent)
}

// OutputMatches is OutputContains with a regular expression. An invalid
// expression is a harness error, not a test failure.
func (c *Comparator) OutputMatches(res models.CommandResult, expr string, expectPresent bool) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("invalid output pattern %q: %w", expr, err)
	}
	actual := output(res)
	return c.check(res, ModeMatch, expr, actual, re.MatchString(actual), expectPresent)
}

// OutputEquals compares stdout with expected once a single trailing newline
// has been trimmed from both.
func (c *Comparator) OutputEquals(res models.CommandResult, expected string) error {
	actual := TrimNewline(res.Stdout)
	expected = TrimNewline(expected)
	return c.check(res, ModeEqual, expected, actual, actual == expected, true)
}

// Note adds free text to the run log.
func (c *Comparator) Note(format string, args ...any) {
	c.rec.Note(fmt.Sprintf(format, args...))
}

func (c *Comparator) check(res models.CommandResult, mode, pattern, actual string, found, expectPresent bool) error {
	ok := found == expectPresent
	neg := ""
	if !expectPresent {
		neg = "not "
	}
	c.rec.Assertion(fmt.Sprintf("output of %q should %s%s %q", res.Command, neg, mode, pattern), ok)
	if ok {
		return nil
	}
	return srvErrors.NewOutputMismatch(res.Command, mode, pattern, actual, expectPresent)
}

// TrimNewline removes exactly one trailing newline.
func TrimNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}

// ExpectFailure reads the status_error parameter.
func ExpectFailure(p params.Params) bool {
	return p.ExpectFailure()
}

func output(res models.CommandResult) string {
	if res.Stderr == "" {
		return res.Stdout
	}
	return res.Stdout + res.Stderr
}
