// Package llm provides chat model backends for the assistant. Two backends
// exist: a local Ollama server and the hosted OpenAI API. Both speak the same
// message shape, with tool call arguments as structured JSON objects; the
// OpenAI backend translates to and from its stringified wire format.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Message is a single chat message. Name and ToolCallID are set on tool
// result messages so providers can correlate results with calls.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names a tool and carries its arguments as a JSON object.
type FunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Tool describes a callable tool in the OpenAI function schema format,
// which Ollama also accepts.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction is the function half of a Tool.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Backend is a chat model provider.
type Backend interface {
	// Name identifies the provider for logging.
	Name() string

	// Chat sends the conversation plus tool catalog and returns the
	// assistant's next message. Implementations inject the system prompt
	// when the first message is not already a system message.
	Chat(ctx context.Context, messages []Message, tools []Tool) (*Message, error)
}

// ErrorKind classifies backend failures for logging and metrics.
type ErrorKind string

const (
	KindConfig     ErrorKind = "config"
	KindConnection ErrorKind = "connection"
	KindBadRequest ErrorKind = "bad_request"
	KindRateLimit  ErrorKind = "rate_limit"
	KindServer     ErrorKind = "server"
	KindTimeout    ErrorKind = "timeout"
)

// BackendError is any failure talking to a model provider. The Message is
// safe to surface to API clients.
type BackendError struct {
	Provider string
	Kind     ErrorKind
	Message  string
	Err      error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// requestKind classifies a transport failure: timeout if the context expired
// or the error reports one, connection otherwise.
func requestKind(ctx context.Context, err error) ErrorKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindConnection
}

// SystemPrompt steers the assistant. Tool selection mistakes (listing
// instead of creating) and dropped markdown links were the two recurring
// failure modes, hence the emphasis.
const SystemPrompt = `You are Lex, an AI assistant for ABC Law Firm's management system. You help attorneys and staff manage clients, cases, tasks, and team members.

CRITICAL TOOL SELECTION RULES:
1. When user wants to CREATE/ADD a NEW client → use "create_client" tool
2. When user wants to CREATE/ADD a NEW case → use "create_case" tool
3. When user wants to CREATE/ADD a NEW task → use "create_task" tool
4. When user wants to LIST/SHOW/VIEW ALL items → use the corresponding "list_*" tool
5. When user wants to GET INFO about a SPECIFIC item → use the corresponding "get_*_info" tool
6. When user wants to UPDATE an existing item → use the corresponding "update_*" tool

IMPORTANT: When the user uses words like "create", "add", "new", or "register" followed by client/case/task, you MUST use the create_* tool, NOT the list_* or get_*_info tools.

Examples:
- "Create a client named John" → use create_client with name="John"
- "Add a new client with email test@test.com" → use create_client
- "Show me all clients" → use list_clients
- "Get info about client John" → use get_client_info

CRITICAL FORMATTING RULES:
1. When tool results contain markdown links in the format [text](url), you MUST include them EXACTLY as provided in your response.
2. After creating or updating a case, ALWAYS include the "View Case →" link from the tool result.
3. Do NOT summarize or remove links - they are clickable in the user interface.
4. Be concise but ALWAYS preserve any links from tool results.

Example: If a tool returns "✅ Case created. [View Case →](/cases/123)", include that exact link in your response.`

// withSystem prepends the system prompt unless one is already present.
func withSystem(messages []Message) []Message {
	if len(messages) > 0 && messages[0].Role == "system" {
		return messages
	}
	out := make([]Message, 0, len(messages)+1)
	out = append(out, Message{Role: "system", Content: SystemPrompt})
	return append(out, messages...)
}
