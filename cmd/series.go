package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/economic-index-etl/internal/series"
)

// newSeriesCmd lists the catalog. It needs no services, so it skips the
// root's application setup.
func newSeriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "series",
		Short:             "List the series this tool can publish",
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tSTATE ID\tSOURCE")
			for _, name := range series.Names() {
				def, err := series.Lookup(name)
				if err != nil {
					return err
				}
				src := "--source-url"
				if def.Kind == series.KindSIDRA {
					src = fmt.Sprintf("sidra table %d", def.TableID)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.Name, def.Kind, def.StateID, src)
			}
			return w.Flush()
		},
	}
}
