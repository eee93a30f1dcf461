package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// newPublishCmd creates the 'publish' subcommand.
func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the latest snapshot of each series to every target bucket",
		Long: `Loads each series, derives its latest reference period and, for every
target bucket in order, writes a CSV snapshot only when the bucket is missing
the series or its recorded period is behind. Buckets whose name contains
"work-area" keep a single overwritten file; other buckets are append-only.`,
		Args: cobra.NoArgs,
		RunE: runPublishCommand,
	}

	flags := cmd.Flags()
	flags.StringSlice("target-buckets", nil, "comma-separated destination buckets (required)")
	flags.String("source-url", "", "source page override for an html series; requires a single --series")
	flags.String("path", "ECONOMIC", "object key prefix inside each bucket")
	flags.StringSlice("series", []string{"IGPM"}, "comma-separated series names")
	flags.Bool("debug", false, "verbose logging")
	return cmd
}

func runPublishCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	// cobra skips post-run hooks when RunE fails.
	defer appInstance.Close()

	results, runErr := appInstance.Run(cmd.Context())
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintln(out, r.Status())
	}
	if runErr != nil {
		return fmt.Errorf("publish: %w", runErr)
	}
	return nil
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
