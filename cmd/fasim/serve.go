package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/fasim/internal/presentation/tui"
	httpAdapter "github.com/aretw0/fasim/pkg/adapters/http"
	"github.com/aretw0/fasim/pkg/observability"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Exposes the configured store, simulations, graph export and sessions as a JSON API over HTTP, with Prometheus metrics on /metrics.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.HTTP.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			metrics := observability.NewMetrics()
			eng := a.engine(metrics.Hooks(), observability.LoggingHooks(a.logger))
			handler := httpAdapter.NewHandler(eng, a.sessionManager(eng),
				httpAdapter.WithLogger(a.logger),
				httpAdapter.WithMetrics(metrics.Handler()),
			)

			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			tui.PrintBanner(cmd.ErrOrStderr(), profileFor(cmd.ErrOrStderr()))

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				a.logger.Info("starting server", "addr", srv.Addr, "store", a.cfg.Store)
				serverErrors <- srv.ListenAndServe()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)

			case <-ctx.Done():
				a.logger.Info("shutting down")

				// Give outstanding requests a deadline for completion.
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					a.logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
					if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("error killing server: %w", err)
					}
				}
				a.logger.Info("server stopped gracefully")
				return nil
			}
		},
	}

	cmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
	return cmd
}
