package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openaiTestBackend(t *testing.T, handler http.HandlerFunc) *OpenAIBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIBackend(OpenAIConfig{
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
		BaseURL: srv.URL,
	}, testLogger())
}

func TestOpenAIMissingKey(t *testing.T) {
	b := NewOpenAIBackend(OpenAIConfig{Model: "gpt-4o-mini"}, testLogger())
	_, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Contains(t, backendErr.Message, "OPENAI_API_KEY")
}

func TestOpenAISystemPromptInjected(t *testing.T) {
	var captured openaiChatRequest
	b := openaiTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "hello"}}},
		})
	})

	resp, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, SystemPrompt, captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
}

func TestOpenAIToolArgumentsStringified(t *testing.T) {
	var captured openaiChatRequest
	b := openaiTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{
				"role": "assistant",
				"tool_calls": []map[string]any{{
					"id":   "call_9",
					"type": "function",
					"function": map[string]any{
						"name":      "get_client_info",
						"arguments": `{"clientName":"Acme"}`,
					},
				}},
			}}},
		})
	})

	history := []Message{
		{Role: "user", Content: "tell me about Acme"},
		{Role: "assistant", ToolCalls: []ToolCall{{
			ID:       "call_1",
			Function: FunctionCall{Name: "list_clients", Arguments: map[string]any{"status": "active"}},
		}}},
		{Role: "user", Content: "and their info?"},
	}
	resp, err := b.Chat(context.Background(), history, nil)
	require.NoError(t, err)

	// outbound arguments are JSON strings on the wire
	require.Len(t, captured.Messages, 4) // system + 3
	prior := captured.Messages[2]
	require.Len(t, prior.ToolCalls, 1)
	assert.Equal(t, "function", prior.ToolCalls[0].Type)
	assert.JSONEq(t, `{"status":"active"}`, prior.ToolCalls[0].Function.Arguments)

	// inbound arguments come back parsed
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_9", resp.ToolCalls[0].ID)
	assert.Equal(t, map[string]any{"clientName": "Acme"}, resp.ToolCalls[0].Function.Arguments)
}

func TestOpenAIToolsSuppressedOnFinalization(t *testing.T) {
	tools := []Tool{{Type: "function", Function: ToolFunction{Name: "list_clients"}}}

	t.Run("tools sent on normal turns", func(t *testing.T) {
		var captured openaiChatRequest
		b := openaiTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "ok"}}},
			})
		})
		_, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, tools)
		require.NoError(t, err)
		assert.Len(t, captured.Tools, 1)
		assert.Equal(t, "auto", captured.ToolChoice)
	})

	t.Run("tools omitted after a tool result", func(t *testing.T) {
		var captured openaiChatRequest
		b := openaiTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "ok"}}},
			})
		})
		history := []Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", ToolCalls: []ToolCall{{ID: "call_1", Function: FunctionCall{Name: "list_clients"}}}},
			{Role: "tool", Content: "[]", Name: "list_clients", ToolCallID: "call_1"},
		}
		_, err := b.Chat(context.Background(), history, tools)
		require.NoError(t, err)
		assert.Empty(t, captured.Tools)
		assert.Empty(t, captured.ToolChoice)
	})
}

func TestOpenAIStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		want     string
		wantKind ErrorKind
	}{
		{
			"bad request carries api message",
			http.StatusBadRequest,
			`{"error":{"message":"model does not exist"}}`,
			"OpenAI API error: model does not exist",
			KindBadRequest,
		},
		{
			"unauthorized",
			http.StatusUnauthorized,
			`{}`,
			"Invalid OpenAI API key. Please check your OPENAI_API_KEY.",
			KindConfig,
		},
		{
			"rate limited",
			http.StatusTooManyRequests,
			`{}`,
			"OpenAI rate limit exceeded. Please wait a moment and try again.",
			KindRateLimit,
		},
		{
			"server error",
			http.StatusInternalServerError,
			`{}`,
			"OpenAI server error. Please try again in a moment.",
			KindServer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := openaiTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)

			var backendErr *BackendError
			require.ErrorAs(t, err, &backendErr)
			assert.Equal(t, tt.want, backendErr.Message)
			assert.Equal(t, tt.wantKind, backendErr.Kind)
		})
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	b := openaiTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	})
	_, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "No response from OpenAI API", backendErr.Message)
}

func TestWithSystem(t *testing.T) {
	t.Run("prepends when absent", func(t *testing.T) {
		out := withSystem([]Message{{Role: "user", Content: "hi"}})
		require.Len(t, out, 2)
		assert.Equal(t, "system", out[0].Role)
	})

	t.Run("keeps an existing system message", func(t *testing.T) {
		out := withSystem([]Message{{Role: "system", Content: "custom"}, {Role: "user", Content: "hi"}})
		require.Len(t, out, 2)
		assert.Equal(t, "custom", out[0].Content)
	})
}

func TestBackendErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &BackendError{Provider: "openai", Message: "request failed", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "openai: request failed: boom", err.Error())
}
