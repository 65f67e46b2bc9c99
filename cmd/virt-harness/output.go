package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/report"
	"github.com/kubev2v/virt-harness/internal/services"
	"github.com/kubev2v/virt-harness/internal/util"
	"github.com/kubev2v/virt-harness/pkg/checkpoint"
)

const reasonWidth = 100

var verdictColors = map[models.Verdict]*color.Color{
	models.VerdictPass:  color.New(color.FgGreen, color.Bold),
	models.VerdictFail:  color.New(color.FgRed, color.Bold),
	models.VerdictError: color.New(color.FgYellow, color.Bold),
	models.VerdictSkip:  color.New(color.FgCyan),
}

func verdictLabel(v models.Verdict) string {
	label := fmt.Sprintf("%-5s", strings.ToUpper(string(v)))
	if c, ok := verdictColors[v]; ok {
		return c.Sprint(label)
	}
	return label
}

func printOutcome(w io.Writer, scenario string, o checkpoint.Outcome) {
	r := o.Record
	fmt.Fprintf(w, "%s %s/%s", verdictLabel(r.Verdict), scenario, r.Checkpoint)
	if p := report.FormatParams(r.Params); p != "" {
		fmt.Fprintf(w, " [%s]", p)
	}
	fmt.Fprintf(w, " %.2fs\n", util.Seconds(r.Duration()))
	if r.Verdict != models.VerdictPass && r.Reason != "" {
		fmt.Fprintf(w, "      %s\n", util.Truncate(r.Reason, reasonWidth))
	}
}

func printSummary(w io.Writer, result *services.RunResult) {
	s := result.Summary
	fmt.Fprintf(w, "\n%d runs: %s %d, %s %d, %s %d, %s %d\n", s.Total,
		verdictLabel(models.VerdictPass), s.Passed,
		verdictLabel(models.VerdictFail), s.Failed,
		verdictLabel(models.VerdictError), s.Errors,
		verdictLabel(models.VerdictSkip), s.Skip,
	)
	for _, sr := range result.Scenarios {
		if sr.Err != nil {
			fmt.Fprintf(w, "scenario %s: %v\n", sr.Scenario, sr.Err)
		}
	}
}
