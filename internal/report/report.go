// Package report exports recorded runs as an xlsx workbook with a summary
// sheet, one row per run and the full command log.
package report

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/services"
)

const (
	SheetSummary = "Summary"
	SheetRuns    = "Runs"
	SheetLog     = "Log"
)

var (
	runHeader = []any{"ID", "Scenario", "Module", "Checkpoint", "Params", "Verdict", "Reason", "Started", "Duration (s)"}
	logHeader = []any{"Run ID", "Checkpoint", "Seq", "Kind", "Text", "Exit status", "Passed", "At"}

	verdictColors = map[models.Verdict]string{
		models.VerdictPass:  "#C6EFCE",
		models.VerdictFail:  "#FFC7CE",
		models.VerdictError: "#FFEB9C",
		models.VerdictSkip:  "#D9D9D9",
	}
)

type Exporter struct {
	reports *services.Reports
}

func NewExporter(reports *services.Reports) *Exporter {
	return &Exporter{reports: reports}
}

// Export writes every run matching params to w. Paging in params is ignored.
func (e *Exporter) Export(ctx context.Context, params services.RunListParams, w io.Writer) error {
	params.Limit, params.Offset = 0, 0
	result, err := e.reports.List(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	summary, err := e.reports.Summary(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to summarize runs: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	b := &builder{f: f, styles: map[models.Verdict]int{}}
	if err := b.init(); err != nil {
		return err
	}
	if err := b.summary(summary); err != nil {
		return err
	}
	if err := b.runs(result.Runs); err != nil {
		return err
	}

	row := 2
	for _, run := range result.Runs {
		entries, err := e.reports.Entries(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("failed to read log of run %s: %w", run.ID, err)
		}
		if row, err = b.log(run, entries, row); err != nil {
			return err
		}
	}

	if err := b.finish(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

type builder struct {
	f      *excelize.File
	header int
	styles map[models.Verdict]int
}

func (b *builder) init() error {
	if err := b.f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetRuns, SheetLog} {
		if _, err := b.f.NewSheet(name); err != nil {
			return err
		}
	}

	var err error
	b.header, err = b.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for v, color := range verdictColors {
		style, err := b.f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return err
		}
		b.styles[v] = style
	}
	return nil
}

func (b *builder) summary(s models.RunSummary) error {
	rows := [][]any{
		{"Verdict", "Runs"},
		{string(models.VerdictPass), s.Passed},
		{string(models.VerdictFail), s.Failed},
		{string(models.VerdictError), s.Errors},
		{string(models.VerdictSkip), s.Skip},
		{"total", s.Total},
		{"generated", time.Now().UTC().Format(time.RFC3339)},
	}
	for i, row := range rows {
		if err := b.setRow(SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	return b.f.SetCellStyle(SheetSummary, "A1", "B1", b.header)
}

func (b *builder) runs(runs []models.RunRecord) error {
	if err := b.setRow(SheetRuns, 1, runHeader); err != nil {
		return err
	}
	for i, r := range runs {
		row := i + 2
		err := b.setRow(SheetRuns, row, []any{
			r.ID.String(), r.Scenario, r.Module, r.Checkpoint, FormatParams(r.Params),
			string(r.Verdict), r.Reason, r.StartedAt.UTC().Format(time.RFC3339), r.Duration().Seconds(),
		})
		if err != nil {
			return err
		}
		if style, ok := b.styles[r.Verdict]; ok {
			cell, _ := excelize.CoordinatesToCellName(6, row)
			if err := b.f.SetCellStyle(SheetRuns, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) log(run models.RunRecord, entries []models.LogEntry, row int) (int, error) {
	for _, e := range entries {
		err := b.setRow(SheetLog, row, []any{
			run.ID.String(), run.Checkpoint, e.Seq, string(e.Kind), e.Text, e.ExitStatus, e.Passed,
			e.At.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return row, err
		}
		row++
	}
	return row, nil
}

func (b *builder) finish() error {
	if err := b.setRow(SheetLog, 1, logHeader); err != nil {
		return err
	}
	for sheet, header := range map[string][]any{SheetRuns: runHeader, SheetLog: logHeader} {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := b.f.SetCellStyle(sheet, "A1", last, b.header); err != nil {
			return err
		}
		if err := b.f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return err
		}
		err := b.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
		if err != nil {
			return err
		}
	}
	if err := b.f.SetColWidth(SheetRuns, "A", "A", 38); err != nil {
		return err
	}
	if err := b.f.SetColWidth(SheetLog, "E", "E", 80); err != nil {
		return err
	}
	b.f.SetActiveSheet(0)
	return nil
}

func (b *builder) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return b.f.SetSheetRow(sheet, cell, &values)
}

// FormatParams renders params as "key=value" pairs sorted by key.
func FormatParams(p map[string]string) string {
	parts := make([]string, 0, len(p))
	for _, k := range slices.Sorted(maps.Keys(p)) {
		parts = append(parts, k+"="+p[k])
	}
	return strings.Join(parts, " ")
}
