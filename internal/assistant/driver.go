package assistant

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/lexfirm/lex/internal/llm"
	"github.com/lexfirm/lex/internal/metrics"
)

var reMarkdownLink = regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)

// Driver runs the model dialogue: at most one tool round followed by one
// finalization round.
type Driver struct {
	backend llm.Backend
	exec    *Executor
	tools   []llm.Tool
	log     *slog.Logger
}

// NewDriver creates a Driver using the full tool catalog.
func NewDriver(backend llm.Backend, exec *Executor, log *slog.Logger) *Driver {
	return &Driver{
		backend: backend,
		exec:    exec,
		tools:   Catalog(),
		log:     log,
	}
}

func (d *Driver) chat(ctx context.Context, messages []llm.Message) (*llm.Message, error) {
	start := time.Now()
	resp, err := d.backend.Chat(ctx, messages, d.tools)
	metrics.BackendDuration.WithLabelValues(d.backend.Name()).Observe(time.Since(start).Seconds())
	return resp, err
}

// Run sends the conversation to the model. If the model requests tools, all
// calls are executed in order, and either the combined tool output is
// returned verbatim (when it carries a success marker and a markdown link,
// which models tend to mangle) or the model is called once more to phrase a
// final answer.
func (d *Driver) Run(ctx context.Context, messages []llm.Message) (*llm.Message, error) {
	d.log.Info("model dialogue", "backend", d.backend.Name(), "messages", len(messages))

	resp, err := d.chat(ctx, messages)
	if err != nil {
		return nil, err
	}
	if len(resp.ToolCalls) == 0 {
		return resp, nil
	}

	followup := make([]llm.Message, 0, len(messages)+1+len(resp.ToolCalls))
	followup = append(followup, messages...)
	followup = append(followup, *resp)

	results := make([]string, 0, len(resp.ToolCalls))
	for _, call := range resp.ToolCalls {
		result := d.exec.Execute(ctx, call.Function.Name, call.Function.Arguments)
		results = append(results, result)
		followup = append(followup, llm.Message{
			Role:       "tool",
			Content:    result,
			Name:       call.Function.Name,
			ToolCallID: call.ID,
		})
	}

	combined := strings.Join(results, "\n\n")
	if strings.Contains(combined, "✅") && reMarkdownLink.MatchString(combined) {
		// Models often drop or rewrite markdown links when summarizing, so
		// successful results carrying links go back to the user as-is.
		return &llm.Message{Role: "assistant", Content: combined}, nil
	}

	final, err := d.chat(ctx, followup)
	if err != nil {
		return nil, err
	}
	if len(final.ToolCalls) > 0 {
		// The dialogue is capped at one tool round. A second request for
		// tools is dropped rather than looped.
		d.log.Warn("model requested tools in finalization round", "calls", len(final.ToolCalls))
		final.ToolCalls = nil
	}
	return final, nil
}
