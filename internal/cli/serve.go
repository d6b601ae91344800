package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Borbofruto/Ruki/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API over HTTP",
		Long: `Serve the conversion API for a local UI.

Routes:
  GET  /api/catalog                 brands, models and conversions
  GET  /api/catalog/{brand}/models  model list with separators
  POST /api/detect                  {"brand", "path"}
  POST /api/convert                 {"brand", "conversion", "input_path", "model", "output_dir"}`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, addr, cmd)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8765", "listen address")

	return cmd
}

func runServe(opts *RootOptions, addr string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	log := opts.logger()

	engine, closeEngine, err := opts.newEngine()
	if err != nil {
		return loadErrorExit(formatter, "failed to prepare server", err)
	}
	defer closeEngine()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(engine, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("server listening", "addr", addr)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return WrapExitError(ExitCommandError, "server error", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown error", err)
	}
	return nil
}
