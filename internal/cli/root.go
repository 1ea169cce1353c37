// Package cli provides the command-line interface for lex.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexfirm/lex/internal/config"
	"github.com/lexfirm/lex/internal/db"
	"github.com/lexfirm/lex/internal/llm"
	"github.com/lexfirm/lex/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and wired dependencies
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	st         store.Store
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lex",
	Short: "Law firm management assistant",
	Long: `Lex is the management assistant for a law firm: clients, cases, tasks,
and team members, with an AI chat interface on top.

The serve command runs the HTTP API, chat opens an interactive terminal
session, and seed loads the demo dataset.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load config
		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)

		// Connect the store
		var err error
		st, err = openStore(cmd.Context())
		if err != nil {
			return err
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			if err := st.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
			}
		}
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// openStore builds the configured store backend. The in-memory store starts
// empty, so it is seeded with the demo dataset on every run.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		mem := store.NewMemoryStore()
		if err := store.Seed(ctx, mem, logger); err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		return mem, nil

	case config.StoreSurreal:
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}
		client, err := db.NewClient(ctx, dbCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := client.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
		return store.NewSurrealStore(client), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q (want %q or %q)",
			cfg.Store, config.StoreSurreal, config.StoreMemory)
	}
}

// newBackend builds the configured model backend.
func newBackend() llm.Backend {
	if cfg.UseLocalLLM {
		return llm.NewOllamaBackend(llm.OllamaConfig{
			URL:     cfg.OllamaURL,
			Model:   cfg.OllamaModel,
			Timeout: cfg.ChatTimeout,
		}, logger)
	}
	return llm.NewOpenAIBackend(llm.OpenAIConfig{
		APIKey:  cfg.OpenAIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.ChatTimeout,
	}, logger)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}
