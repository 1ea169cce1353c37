package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIConfig configures the hosted OpenAI backend.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // defaults to the public API, overridable for tests
	Timeout time.Duration
}

// OpenAIBackend talks to the OpenAI chat completions API. Tool call
// arguments are stringified JSON on the wire, so they are encoded on the way
// out and parsed back into objects on the way in.
type OpenAIBackend struct {
	cfg    OpenAIConfig
	client *http.Client
	log    *slog.Logger
}

// NewOpenAIBackend creates an OpenAI backend.
func NewOpenAIBackend(cfg OpenAIConfig, log *slog.Logger) *OpenAIBackend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openaiAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &OpenAIBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

type openaiFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openaiToolCall struct {
	ID       string             `json:"id,omitempty"`
	Type     string             `json:"type"`
	Function openaiFunctionCall `json:"function"`
}

type openaiMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	Name       string           `json:"name,omitempty"`
	ToolCalls  []openaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openaiChatRequest struct {
	Model      string          `json:"model"`
	Messages   []openaiMessage `json:"messages"`
	Stream     bool            `json:"stream"`
	Tools      []Tool          `json:"tools,omitempty"`
	ToolChoice string          `json:"tool_choice,omitempty"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (b *OpenAIBackend) Chat(ctx context.Context, messages []Message, tools []Tool) (*Message, error) {
	if b.cfg.APIKey == "" {
		return nil, &BackendError{
			Provider: "openai",
			Kind:     KindConfig,
			Message:  "OpenAI API key not configured. Please set the OPENAI_API_KEY environment variable. Get your API key at: https://platform.openai.com/api-keys",
		}
	}

	all := withSystem(messages)
	wire := make([]openaiMessage, 0, len(all))
	for _, m := range all {
		wire = append(wire, toOpenAIMessage(m))
	}

	payload := openaiChatRequest{
		Model:    b.cfg.Model,
		Messages: wire,
		Stream:   false,
	}

	// A trailing tool result means this is the finalization round. Leaving
	// the tools out forces a plain text answer instead of another call.
	lastIsToolResult := len(wire) > 0 && wire[len(wire)-1].Role == "tool"
	if !lastIsToolResult && len(tools) > 0 {
		payload.Tools = tools
		payload.ToolChoice = "auto"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &BackendError{Provider: "openai", Kind: KindBadRequest, Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &BackendError{Provider: "openai", Kind: KindBadRequest, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)

	b.log.Debug("openai chat request", "model", b.cfg.Model, "messages", len(wire), "tools", len(payload.Tools))

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, &BackendError{Provider: "openai", Kind: requestKind(ctx, err), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &BackendError{Provider: "openai", Kind: KindConnection, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, b.statusError(resp.StatusCode, respBody)
	}

	var chat openaiChatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, &BackendError{Provider: "openai", Kind: KindServer, Message: "failed to decode response", Err: err}
	}
	if len(chat.Choices) == 0 {
		return nil, &BackendError{Provider: "openai", Kind: KindServer, Message: "No response from OpenAI API"}
	}

	msg, err := fromOpenAIMessage(chat.Choices[0].Message)
	if err != nil {
		return nil, &BackendError{Provider: "openai", Kind: KindServer, Message: "failed to parse tool call arguments", Err: err}
	}
	return msg, nil
}

func (b *OpenAIBackend) statusError(status int, body []byte) error {
	var apiErr openaiChatResponse
	_ = json.Unmarshal(body, &apiErr)

	switch status {
	case http.StatusBadRequest:
		msg := "Bad request"
		if apiErr.Error != nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return &BackendError{Provider: "openai", Kind: KindBadRequest, Message: fmt.Sprintf("OpenAI API error: %s", msg)}
	case http.StatusUnauthorized:
		return &BackendError{Provider: "openai", Kind: KindConfig, Message: "Invalid OpenAI API key. Please check your OPENAI_API_KEY."}
	case http.StatusTooManyRequests:
		return &BackendError{Provider: "openai", Kind: KindRateLimit, Message: "OpenAI rate limit exceeded. Please wait a moment and try again."}
	case http.StatusInternalServerError:
		return &BackendError{Provider: "openai", Kind: KindServer, Message: "OpenAI server error. Please try again in a moment."}
	default:
		return &BackendError{Provider: "openai", Kind: KindServer, Message: fmt.Sprintf("unexpected status %d", status)}
	}
}

func toOpenAIMessage(m Message) openaiMessage {
	out := openaiMessage{
		Role:       m.Role,
		Content:    m.Content,
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		args := "{}"
		if tc.Function.Arguments != nil {
			if encoded, err := json.Marshal(tc.Function.Arguments); err == nil {
				args = string(encoded)
			}
		}
		callType := tc.Type
		if callType == "" {
			callType = "function"
		}
		out.ToolCalls = append(out.ToolCalls, openaiToolCall{
			ID:   tc.ID,
			Type: callType,
			Function: openaiFunctionCall{
				Name:      tc.Function.Name,
				Arguments: args,
			},
		})
	}
	return out
}

func fromOpenAIMessage(m openaiMessage) (*Message, error) {
	out := &Message{
		Role:    "assistant",
		Content: m.Content,
	}
	for _, tc := range m.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("tool call %s: %w", tc.Function.Name, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: FunctionCall{
				Name:      tc.Function.Name,
				Arguments: args,
			},
		})
	}
	return out, nil
}
