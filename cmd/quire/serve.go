package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/quire/internal/cli"
	httpAdapter "github.com/aretw0/quire/pkg/adapters/http"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Serves the library as a JSON API over HTTP, with change events over SSE
and Prometheus metrics on /metrics. Requests are checked against the OpenAPI
document served at /openapi.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			addr := app.Config.HTTPAddr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			spec, err := httpAdapter.NewSpecRouter(cmd.Context())
			if err != nil {
				return err
			}
			handler, stop := httpAdapter.NewHandler(app.Library,
				httpAdapter.WithLogger(app.Logger),
				httpAdapter.WithMetrics(app.Registry),
				httpAdapter.WithRequestValidation(spec),
			)
			defer stop()

			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				app.Logger.Info("Starting Quire Server", "address", srv.Addr, "stories", len(app.Library.Stories()))
				serverErrors <- srv.ListenAndServe()
			}()

			// Blocking main and waiting for shutdown.
			select {
			case err := <-serverErrors:
				return err
			case <-cmd.Context().Done():
				if sc, ok := cmd.Context().(*cli.SignalContext); ok && sc.Signal() != nil {
					app.Logger.Info("Start shutdown...", "signal", sc.Signal())
				}

				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					app.Logger.Error("Graceful shutdown did not complete", "err", err)
					if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
				}
				app.Logger.Info("Quire Server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().String("addr", ":8080", "Address to listen on (overrides http_addr)")
	return cmd
}
