package cli

import (
	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the ranked movie list",
		Long: `Re-rank every stored movie by rating and print the list.

Like loading the home page, this writes the recomputed ranking back to the
database.

Example:
  topten list
  topten list --db ./movies.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite path or postgres:// URL (overrides config)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	a, err := newApp(cmd, opts.RootOptions, formatter, dbOverride(cmd, &opts.Database))
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.svc.Rank(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "failed to rank movies", err)
	}
	formatter.VerboseLog("Ranked %d movie(s) in %s", len(records), a.cfg.Database)

	return formatter.Records(records)
}
