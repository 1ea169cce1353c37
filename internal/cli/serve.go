package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexfirm/lex/internal/assistant"
	"github.com/lexfirm/lex/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the HTTP API: the AI chat endpoint, CRUD routes for clients,
cases, tasks and team members, the dashboard summary, and Prometheus
metrics on /metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a := assistant.New(st, newBackend(), logger)
	srv := server.New(cfg.HTTPAddr, a, st, cfg.ChatTimeout, logger)

	errs := make(chan error, 1)
	go func() {
		slog.Info("starting lex-server", "addr", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slog.Info("shutting down server...", "signal", sig.String())
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
