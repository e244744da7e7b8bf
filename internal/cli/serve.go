package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/topten/internal/config"
	"github.com/roach88/topten/internal/web"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string

	// IDGenerator overrides the request ID generator (for testing).
	// If nil, the server uses UUIDv7.
	IDGenerator web.IDGenerator

	// ready, if set, receives the bound address once the listener is open.
	ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Run the topten web server.

The database is created on first start. SIGINT or SIGTERM stops the server
after in-flight requests finish.

Example:
  topten serve
  topten serve --addr :8080 --db ./movies.db
  topten serve --config ./topten.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite path or postgres:// URL (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	a, err := newApp(cmd, opts.RootOptions, formatter, func(cfg *config.Config) {
		dbOverride(cmd, &opts.Database)(cfg)
		if cmd.Flags().Changed("addr") {
			cfg.Addr = opts.Addr
		}
	})
	if err != nil {
		return err
	}
	defer a.close()

	serverOpts := []web.Option{web.WithLogger(a.logger)}
	if opts.IDGenerator != nil {
		serverOpts = append(serverOpts, web.WithIDGenerator(opts.IDGenerator))
	}
	srv, err := web.NewServer(a.svc, serverOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build server", err)
	}

	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to listen", err)
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			a.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	addr := ln.Addr().String()
	a.logger.Info("server starting", "addr", addr, "db", a.cfg.Database)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", addr)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")
	if opts.ready != nil {
		opts.ready <- addr
	}

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}

	a.logger.Info("server stopped gracefully")
	return nil
}
