package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ollamaTestBackend(t *testing.T, handler http.HandlerFunc) *OllamaBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOllamaBackend(OllamaConfig{URL: srv.URL, Model: "llama3"}, testLogger())
}

func TestOllamaChatPayload(t *testing.T) {
	var captured ollamaChatRequest
	var path string
	b := ollamaTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: Message{Role: "assistant", Content: "hello"},
		})
	})

	tools := []Tool{{Type: "function", Function: ToolFunction{Name: "list_clients"}}}
	resp, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, tools)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)

	assert.Equal(t, "/api/chat", path)
	assert.Equal(t, "llama3", captured.Model)
	assert.False(t, captured.Stream)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Len(t, captured.Tools, 1)
}

func TestOllamaToolCallsPassThrough(t *testing.T) {
	b := ollamaTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: Message{
				Role: "assistant",
				ToolCalls: []ToolCall{{
					Function: FunctionCall{
						Name:      "get_case_info",
						Arguments: map[string]any{"caseIdentifier": "MM-2024-001"},
					},
				}},
			},
		})
	})

	resp, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "case info"}}, nil)
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "get_case_info", resp.ToolCalls[0].Function.Name)
	assert.Equal(t, map[string]any{"caseIdentifier": "MM-2024-001"}, resp.ToolCalls[0].Function.Arguments)
}

func TestOllamaDefaultsRole(t *testing.T) {
	b := ollamaTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":{"content":"hi"}}`)
	})
	resp, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "assistant", resp.Role)
}

func TestOllamaErrors(t *testing.T) {
	t.Run("api error field", func(t *testing.T) {
		b := ollamaTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"error":"model not found"}`)
		})
		_, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)

		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "model not found", backendErr.Message)
	})

	t.Run("unexpected status", func(t *testing.T) {
		b := ollamaTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		})
		_, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)

		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Contains(t, backendErr.Message, "unexpected status 503")
	})

	t.Run("connection refused", func(t *testing.T) {
		// grab a port nobody is listening on
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		b := NewOllamaBackend(OllamaConfig{URL: url, Model: "llama3"}, testLogger())
		_, err := b.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)

		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "Ollama is not running. Please start Ollama.", backendErr.Message)
		assert.Equal(t, KindConnection, backendErr.Kind)
	})
}
