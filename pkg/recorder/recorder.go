// Package recorder keeps the per-run log of every command issued and every
// assertion evaluated.
package recorder

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kubev2v/virt-harness/internal/models"
)

type Recorder interface {
	Command(res models.CommandResult)
	Assertion(description string, passed bool)
	Note(text string)
}

// Log is an in-memory Recorder bound to one run. It mirrors every entry to the
// debug logger.
type Log struct {
	runID   uuid.UUID
	entries []models.LogEntry
	log     *zap.SugaredLogger
	mu      sync.Mutex
}

func NewLog(runID uuid.UUID) *Log {
	return &Log{
		runID: runID,
		log:   zap.S().Named("recorder").With("run", runID.String()),
	}
}

func (l *Log) RunID() uuid.UUID {
	return l.runID
}

func (l *Log) Command(res models.CommandResult) {
	l.log.Debugw("command", "command", res.Command, "exit_status", res.ExitStatus, "stdout", res.Stdout, "stderr", res.Stderr)
	l.append(models.LogEntry{
		Kind:       models.LogKindCommand,
		Text:       res.String(),
		ExitStatus: res.ExitStatus,
		Passed:     res.ExitStatus == 0,
	})
}

func (l *Log) Assertion(description string, passed bool) {
	l.log.Debugw("assertion", "assertion", description, "passed", passed)
	l.append(models.LogEntry{
		Kind:   models.LogKindAssertion,
		Text:   description,
		Passed: passed,
	})
}

func (l *Log) Note(text string) {
	l.log.Debugw("note", "text", text)
	l.append(models.LogEntry{Kind: models.LogKindNote, Text: text, Passed: true})
}

func (l *Log) append(e models.LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.RunID = l.runID
	e.Seq = len(l.entries) + 1
	e.At = time.Now()
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the log so far.
func (l *Log) Entries() []models.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Nop discards everything.
type Nop struct{}

func (Nop) Command(models.CommandResult) {}
func (Nop) Assertion(string, bool)       {}
func (Nop) Note(string)                  {}
