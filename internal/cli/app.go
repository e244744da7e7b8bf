package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/topten/internal/catalog"
	"github.com/roach88/topten/internal/config"
	"github.com/roach88/topten/internal/store"
	"github.com/roach88/topten/internal/tmdb"
)

// app is the application context shared by every command: validated
// settings, a logger, the store, the gateway and the catalog service built
// on them. It is built once per command and closed on exit.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *store.Store
	gateway *tmdb.Client
	svc     *catalog.Service
}

// loadConfig layers the config file and environment, then applies any
// command-line overrides before validating.
func loadConfig(opts *RootOptions, override func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{File: opts.Config})
	if err != nil {
		return config.Config{}, err
	}
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger writes text logs to w; --verbose forces debug level.
func newLogger(opts *RootOptions, cfg config.Config, w io.Writer) *slog.Logger {
	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// dbOverride returns an override that replaces the database when the
// command's --db flag was set.
func dbOverride(cmd *cobra.Command, db *string) func(*config.Config) {
	return func(cfg *config.Config) {
		if cmd.Flags().Changed("db") {
			cfg.Database = *db
		}
	}
}

// newApp loads config and opens the store. Callers must call close.
func newApp(cmd *cobra.Command, opts *RootOptions, formatter *OutputFormatter, override func(*config.Config)) (*app, error) {
	cfg, err := loadConfig(opts, override)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	logger := newLogger(opts, cfg, cmd.ErrOrStderr())

	logger.Debug("opening database", "dsn", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}

	gw := tmdb.New(tmdb.Config{
		Token:             cfg.TMDB.Token,
		BaseURL:           cfg.TMDB.BaseURL,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Burst:             cfg.TMDB.Burst,
	}, tmdb.WithLogger(logger))

	svc := catalog.NewService(st, gw,
		catalog.WithPosterBase(cfg.TMDB.PosterBase),
		catalog.WithLogger(logger),
	)

	return &app{cfg: cfg, logger: logger, store: st, gateway: gw, svc: svc}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
