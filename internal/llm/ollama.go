package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// OllamaConfig configures the local Ollama backend.
type OllamaConfig struct {
	URL     string // base URL, e.g. http://localhost:11434
	Model   string
	Timeout time.Duration
}

// OllamaBackend talks to a local Ollama server via its /api/chat endpoint.
type OllamaBackend struct {
	cfg    OllamaConfig
	client *http.Client
	log    *slog.Logger
}

// NewOllamaBackend creates an Ollama backend.
func NewOllamaBackend(cfg OllamaConfig, log *slog.Logger) *OllamaBackend {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &OllamaBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

func (b *OllamaBackend) Name() string { return "ollama" }

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Tools    []Tool    `json:"tools"`
	Stream   bool      `json:"stream"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

func (b *OllamaBackend) Chat(ctx context.Context, messages []Message, tools []Tool) (*Message, error) {
	payload := ollamaChatRequest{
		Model:    b.cfg.Model,
		Messages: withSystem(messages),
		Tools:    tools,
		Stream:   false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &BackendError{Provider: "ollama", Kind: KindBadRequest, Message: "failed to encode request", Err: err}
	}

	url := strings.TrimSuffix(b.cfg.URL, "/") + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &BackendError{Provider: "ollama", Kind: KindBadRequest, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	b.log.Debug("ollama chat request", "model", b.cfg.Model, "messages", len(payload.Messages), "tools", len(tools))

	resp, err := b.client.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, &BackendError{Provider: "ollama", Kind: KindConnection, Message: "Ollama is not running. Please start Ollama.", Err: err}
		}
		return nil, &BackendError{Provider: "ollama", Kind: requestKind(ctx, err), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &BackendError{Provider: "ollama", Kind: KindConnection, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &BackendError{
			Provider: "ollama",
			Kind:     KindServer,
			Message:  fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}
	}

	var chat ollamaChatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, &BackendError{Provider: "ollama", Kind: KindServer, Message: "failed to decode response", Err: err}
	}
	if chat.Error != "" {
		return nil, &BackendError{Provider: "ollama", Kind: KindServer, Message: chat.Error}
	}

	msg := chat.Message
	if msg.Role == "" {
		msg.Role = "assistant"
	}
	return &msg, nil
}
