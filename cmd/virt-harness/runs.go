package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	v1 "github.com/kubev2v/virt-harness/api/v1"
	"github.com/kubev2v/virt-harness/internal/config"
	"github.com/kubev2v/virt-harness/internal/models"
	"github.com/kubev2v/virt-harness/internal/services"
	"github.com/kubev2v/virt-harness/internal/util"
)

type filterOptions struct {
	scenarios   []string
	modules     []string
	checkpoints []string
	verdicts    []string
}

func (f *filterOptions) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVar(&f.scenarios, "scenario", nil, "Filter by scenario")
	fs.StringSliceVar(&f.modules, "module", nil, "Filter by test module")
	fs.StringSliceVar(&f.checkpoints, "checkpoint", nil, "Filter by checkpoint")
	fs.StringSliceVar(&f.verdicts, "verdict", nil, "Filter by verdict (pass, fail, error, skip)")
}

func (f *filterOptions) params() (services.RunListParams, error) {
	verdicts, err := v1.ParseVerdicts(f.verdicts)
	if err != nil {
		return services.RunListParams{}, err
	}
	return services.RunListParams{
		Scenarios:   f.scenarios,
		Modules:     f.modules,
		Checkpoints: f.checkpoints,
		Verdicts:    verdicts,
	}, nil
}

func newRunsCommand(cfg *config.Configuration) *cobra.Command {
	var (
		filters filterOptions
		limit   uint64
		output  string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := filters.params()
			if err != nil {
				return err
			}
			p.Limit = limit

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(ctx) //nolint:errcheck

			result, err := services.NewReportsService(a.store).List(ctx, p)
			if err != nil {
				return err
			}

			switch output {
			case "json":
				runs := make([]v1.Run, 0, len(result.Runs))
				for _, r := range result.Runs {
					runs = append(runs, v1.NewRunFromModel(r))
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(v1.RunListResponse{Page: 1, PageCount: 1, Total: result.Total, Runs: runs})
			case "table":
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSCENARIO\tCHECKPOINT\tVERDICT\tSTARTED\tDURATION\tREASON")
				for _, r := range result.Runs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2fs\t%s\n",
						r.ID, r.Scenario, r.Checkpoint, verdictLabel(r.Verdict),
						r.StartedAt.Local().Format(time.DateTime), util.Seconds(r.Duration()), util.Truncate(r.Reason, 60))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d runs\n", len(result.Runs), result.Total)
				return nil
			default:
				return fmt.Errorf("invalid output %q: must be table or json", output)
			}
		},
	}

	filters.register(cmd)
	cmd.Flags().Uint64Var(&limit, "limit", 20, "Maximum number of runs, 0 for all")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	cmd.AddCommand(newRunLogCommand(cfg))
	return cmd
}

func newRunLogCommand(cfg *config.Configuration) *cobra.Command {
	return &cobra.Command{
		Use:   "log RUN_ID",
		Short: "Print the commands and assertions of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(ctx) //nolint:errcheck

			reports := services.NewReportsService(a.store)
			run, err := reports.Get(ctx, id)
			if err != nil {
				return err
			}
			entries, err := reports.Entries(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s/%s\n", verdictLabel(run.Verdict), run.Module, run.Checkpoint)
			for _, e := range entries {
				mark := " "
				if e.Kind == models.LogKindAssertion && !e.Passed {
					mark = "!"
				}
				fmt.Fprintf(out, "%3d %s %-9s %s\n", e.Seq, mark, e.Kind, e.Text)
			}
			return nil
		},
	}
}
