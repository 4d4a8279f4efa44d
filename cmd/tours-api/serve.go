package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/deppfellow/tours-api/internal/handler"
	"github.com/deppfellow/tours-api/internal/router"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.server.LoggerService.Shutdown()
			log := a.server.Logger

			if a.server.DB != nil {
				if err := a.server.DB.EnsureIndexes(cmd.Context()); err != nil {
					log.Error().Err(err).Msg("failed to ensure indexes")
				}
			}

			handlers := handler.NewHandlers(a.server, a.services)
			a.server.SetupHTTPServer(router.NewRouter(a.server, handlers, a.services))

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					log.Error().Err(err).Msg("server stopped")
					return err
				}
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server forced to shutdown")
				return err
			}

			log.Info().Msg("server exited properly")
			return nil
		},
	}
}
