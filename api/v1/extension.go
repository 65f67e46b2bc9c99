package v1

import (
	"fmt"
	"strings"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
)

func NewRunFromModel(r models.RunRecord) Run {
	params := r.Params
	if params == nil {
		params = map[string]string{}
	}
	return Run{
		Id:         r.ID.String(),
		Scenario:   r.Scenario,
		Module:     r.Module,
		Checkpoint: r.Checkpoint,
		Params:     params,
		Verdict:    string(r.Verdict),
		Reason:     r.Reason,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DurationMs: r.Duration().Milliseconds(),
	}
}

func NewLogEntryFromModel(e models.LogEntry) LogEntry {
	return LogEntry{
		Seq:        e.Seq,
		Kind:       string(e.Kind),
		Text:       e.Text,
		ExitStatus: e.ExitStatus,
		Passed:     e.Passed,
		At:         e.At,
	}
}

func (s *Summary) FromModel(m models.RunSummary) {
	s.Total = m.Total
	s.Passed = m.Passed
	s.Failed = m.Failed
	s.Errors = m.Errors
	s.Skipped = m.Skip
}

func NewCheckpointFromModel(module string, cp checkpoint.Checkpoint) Checkpoint {
	return Checkpoint{
		Name:        cp.Name,
		Module:      module,
		Description: cp.Description,
		NeedsImage:  cp.NeedsImage,
		Defaults:    cp.Defaults,
	}
}

// ParseVerdicts converts the verdict query values. Values may be repeated or
// comma separated.
func ParseVerdicts(values []string) ([]models.Verdict, error) {
	var verdicts []models.Verdict
	for _, v := range SplitValues(values) {
		switch verdict := models.Verdict(v); verdict {
		case models.VerdictPass, models.VerdictFail, models.VerdictError, models.VerdictSkip:
			verdicts = append(verdicts, verdict)
		default:
			return nil, fmt.Errorf("invalid verdict %q: must be one of pass, fail, error, skip", v)
		}
	}
	return verdicts, nil
}

// SplitValues flattens repeated and comma separated query values.
func SplitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
