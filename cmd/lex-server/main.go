// Package main provides the standalone HTTP server for lex.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexfirm/lex/internal/assistant"
	"github.com/lexfirm/lex/internal/config"
	"github.com/lexfirm/lex/internal/db"
	"github.com/lexfirm/lex/internal/llm"
	"github.com/lexfirm/lex/internal/server"
	"github.com/lexfirm/lex/internal/store"
)

func main() {
	// Parse flags
	seed := flag.Bool("seed", false, "wipe the store and load the demo dataset on startup")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize logging
	logger, logCleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer logCleanup()
	slog.SetDefault(logger)

	slog.Info("starting lex-server", "addr", cfg.HTTPAddr, "store", cfg.Store)

	// Connect the store
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := openStore(ctx, cfg, logger)
	cancel()
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	// Seed if requested (via flag or env var)
	if *seed || os.Getenv("LEX_SEED") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := store.Seed(ctx, st, logger); err != nil {
			cancel()
			slog.Error("failed to seed store", "error", err)
			os.Exit(1)
		}
		cancel()
	}

	// Model backend
	var backend llm.Backend
	if cfg.UseLocalLLM {
		backend = llm.NewOllamaBackend(llm.OllamaConfig{
			URL:     cfg.OllamaURL,
			Model:   cfg.OllamaModel,
			Timeout: cfg.ChatTimeout,
		}, logger)
	} else {
		backend = llm.NewOpenAIBackend(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.ChatTimeout,
		}, logger)
	}
	slog.Info("model backend ready", "provider", backend.Name())

	a := assistant.New(st, backend, logger)
	srv := server.New(cfg.HTTPAddr, a, st, cfg.ChatTimeout, logger)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.Store == config.StoreMemory {
		mem := store.NewMemoryStore()
		if err := store.Seed(ctx, mem, logger); err != nil {
			return nil, err
		}
		return mem, nil
	}

	client, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := client.InitSchema(ctx); err != nil {
		return nil, err
	}
	return store.NewSurrealStore(client), nil
}
