package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Store backends.
const (
	StoreSurreal = "surreal"
	StoreMemory  = "memory"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	HTTPAddr string

	// Model backend selection: local Ollama by default, hosted OpenAI when
	// LEX_USE_LOCAL_LLM=false.
	UseLocalLLM bool
	OllamaURL   string
	OllamaModel string
	OpenAIKey   string
	OpenAIModel string
	ChatTimeout time.Duration

	// Store backend
	Store string

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		HTTPAddr: getEnv("LEX_HTTP_ADDR", ":5050"),

		UseLocalLLM: getEnv("LEX_USE_LOCAL_LLM", "true") != "false",
		OllamaURL:   getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel: getEnv("OLLAMA_MODEL", "llama3"),
		OpenAIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ChatTimeout: parseDuration(getEnv("LEX_CHAT_TIMEOUT", "120s")),

		Store: getEnv("LEX_STORE", StoreSurreal),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "lexfirm"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "firm"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LogFile:  getEnv("LEX_LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("LEX_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}
