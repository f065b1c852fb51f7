package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fauna-gallery/pkg/config"
	"fauna-gallery/pkg/handlers"
	"fauna-gallery/pkg/services"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the gallery page and its session API via HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serveWebsite(ctx, cfg, newLogger(cfg))
		},
	}
}

// newServer wires sessions, handlers and the router into an http.Server
func newServer(cfg *config.Config, log *slog.Logger) (*http.Server, *services.SessionStore) {
	sessions := services.NewSessionStore(cfg.SessionTTL, newFetcher(cfg, log), services.SessionOptions{
		MinLoading: cfg.MinLoading,
		Supersede:  cfg.SupersedeFetches,
	}, log)

	h := handlers.New(sessions, cfg.ViewsDir, log)
	return &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           handlers.NewRouter(h, cfg.PublicDir, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}, sessions
}

// serveWebsite runs the web server until ctx is canceled, then shuts it down
func serveWebsite(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	server, sessions := newServer(cfg, log)
	defer sessions.Shutdown()

	errCh := make(chan error, 1)
	go func() {
		cfg.PrintServerStartMessage()
		log.Info("server listening",
			slog.String("addr", server.Addr),
			slog.String("env", cfg.Environment),
			slog.Duration("min_loading", cfg.MinLoading),
			slog.Bool("supersede", cfg.SupersedeFetches))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
