package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kubev2v/virt-harness/internal/suites"
	"github.com/kubev2v/virt-harness/internal/util"
)

func newCheckpointsCommand() *cobra.Command {
	var module string

	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "List the registered checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if module != "" && !util.Contains(suites.Modules, module) {
				return fmt.Errorf("unknown module %q: must be one of %s", module, strings.Join(suites.Modules, ", "))
			}

			registry := suites.Registry()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODULE\tIMAGE\tDESCRIPTION")
			for _, cp := range registry.List(module) {
				image := "-"
				if cp.NeedsImage {
					image = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cp.Name, registry.Module(cp.Name), image, cp.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "Only list the checkpoints of this module")

	return cmd
}
