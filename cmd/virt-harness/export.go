package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/kubev2v/virt-harness/internal/config"
	"github.com/kubev2v/virt-harness/internal/report"
	"github.com/kubev2v/virt-harness/internal/services"
)

func newExportCommand(cfg *config.Configuration) *cobra.Command {
	var (
		filters filterOptions
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded runs and their logs to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			p, err := filters.params()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(ctx) //nolint:errcheck

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer func() {
				err = multierr.Append(err, f.Close())
			}()

			if err := report.NewExporter(services.NewReportsService(a.store)).Export(ctx, p, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "virt-harness-runs.xlsx", "Workbook to write")

	return cmd
}
