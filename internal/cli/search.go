package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/topten/internal/catalog"
	"github.com/roach88/topten/internal/movie"
	"github.com/roach88/topten/internal/tmdb"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Search the movie database by title",
		Long: `Search The Movie Database by title and print the matches.

Nothing is stored. The ID column is what the web form's select step uses.

Example:
  topten search "Phone Booth"
  topten search avatar --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, strings.Join(args, " "), cmd)
		},
	}

	return cmd
}

func runSearch(opts *RootOptions, title string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts)

	cfg, err := loadConfig(opts, nil)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	logger := newLogger(opts, cfg, cmd.ErrOrStderr())

	gw := tmdb.New(tmdb.Config{
		Token:             cfg.TMDB.Token,
		BaseURL:           cfg.TMDB.BaseURL,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Burst:             cfg.TMDB.Burst,
	}, tmdb.WithLogger(logger))

	// Search never touches the store.
	svc := catalog.NewService(nil, gw, catalog.WithLogger(logger))

	candidates, err := svc.Search(cmd.Context(), catalog.AddInput{Title: title})
	switch {
	case movie.IsValidation(err):
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid title", err)
	case tmdb.IsUpstream(err):
		return formatter.Fail(ExitFailure, ErrCodeUpstream, "search failed", err)
	case err != nil:
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "search failed", err)
	}

	return formatter.Candidates(strings.TrimSpace(title), candidates)
}
