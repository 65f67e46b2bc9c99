package models

import (
	"time"

	"github.com/google/uuid"
)

type Verdict string

const (
	VerdictPass  Verdict = "pass"
	VerdictFail  Verdict = "fail"
	VerdictError Verdict = "error"
	VerdictSkip  Verdict = "skip"
)

func (v Verdict) Value() string {
	return string(v)
}

// RunRecord is the outcome of one checkpoint run for one parameter combination.
type RunRecord struct {
	ID         uuid.UUID
	Scenario   string
	Module     string
	Checkpoint string
	Params     map[string]string
	Verdict    Verdict
	Reason     string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type LogKind string

const (
	LogKindCommand   LogKind = "command"
	LogKindAssertion LogKind = "assertion"
	LogKindNote      LogKind = "note"
)

// LogEntry is one line of the per-run command and assertion log.
type LogEntry struct {
	RunID      uuid.UUID
	Seq        int
	Kind       LogKind
	Text       string
	ExitStatus int
	Passed     bool
	At         time.Time
}

// RunSummary aggregates verdict counts for a batch of runs.
type RunSummary struct {
	Total  int
	Passed int
	Failed int
	Errors int
	Skip   int
}

func (s *RunSummary) Add(v Verdict) {
	s.AddCount(v, 1)
}

func (s *RunSummary) AddCount(v Verdict, n int) {
	s.Total += n
	switch v {
	case VerdictPass:
		s.Passed += n
	case VerdictFail:
		s.Failed += n
	case VerdictError:
		s.Errors += n
	case VerdictSkip:
		s.Skip += n
	}
}

func (s RunSummary) OK() bool {
	return s.Failed == 0 && s.Errors == 0
}
