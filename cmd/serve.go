package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/analysis"
	"github.com/lehigh-university-libraries/lekhan/internal/handlers"
	"github.com/lehigh-university-libraries/lekhan/internal/storage"
	"github.com/lehigh-university-libraries/lekhan/internal/vault"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the document analysis API server",
		Long: `Starts the Lekhan HTTP API on the specified port.

Clients open a vault session for an owner, upload document images for analysis,
browse and move archived results on the board, and download PDF reports.`,
		Example: `  # Start server on the configured port (default 8888)
  lekhan serve

  # Start server on a custom port with a SQLite vault
  LEKHAN_STORE=sqlite lekhan serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = a.cfg.Port
			}

			service, err := analysis.NewService(a.cfg.ProviderSettings())
			if err != nil {
				return fmt.Errorf("failed to create analysis service: %w", err)
			}

			backend, err := storage.Open(cmd.Context(), a.cfg.StorageOptions())
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer closeBackend(backend)

			handler := handlers.New(vault.NewStore(backend), service, a.reportOptions())
			defer handler.Close()

			mux := http.NewServeMux()
			handler.Register(mux)

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Lekhan API available", "addr", addr, "url", "http://localhost"+addr,
					"provider", service.ProviderName(), "model", service.Model(), "store", a.cfg.Store)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (defaults to the configured port)")

	return cmd
}
