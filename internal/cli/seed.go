package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/topten/internal/seed"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
}

// SeedResult is the JSON payload of the seed command.
type SeedResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load movies from a YAML file",
		Long: `Insert complete movie records from a YAML seed file.

Titles already in the database are skipped. Rankings in the file are ignored;
the next listing recomputes them.

Example:
  topten seed ./movies.yaml
  topten seed --db ./movies.db ./movies.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite path or postgres:// URL (overrides config)")

	return cmd
}

func runSeed(opts *SeedOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	records, err := seed.Load(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSeedFile, "failed to load seed file", err)
	}
	formatter.VerboseLog("Read %d movie(s) from %s", len(records), path)

	a, err := newApp(cmd, opts.RootOptions, formatter, dbOverride(cmd, &opts.Database))
	if err != nil {
		return err
	}
	defer a.close()

	added, skipped, err := a.svc.Import(cmd.Context(), records)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "failed to import movies", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(SeedResult{Added: added, Skipped: skipped})
	}
	fmt.Fprintf(formatter.Writer, "Seeded %d movie(s), skipped %d already present\n", added, skipped)
	return nil
}
