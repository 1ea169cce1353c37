package assistant

import (
	"context"
	"log/slog"

	"github.com/lexfirm/lex/internal/llm"
	"github.com/lexfirm/lex/internal/metrics"
	"github.com/lexfirm/lex/internal/store"
)

// Assistant is the full dialogue engine: guardrails first, model second.
type Assistant struct {
	guardrails *Guardrails
	driver     *Driver
	log        *slog.Logger
}

// New wires up the assistant from a store and a model backend.
func New(s store.Store, backend llm.Backend, log *slog.Logger) *Assistant {
	exec := NewExecutor(s, log)
	return &Assistant{
		guardrails: NewGuardrails(s, exec, log),
		driver:     NewDriver(backend, exec, log),
		log:        log,
	}
}

// HandleTurn produces the assistant's reply to the conversation. The
// conversation is the complete history; no state is kept between calls.
func (a *Assistant) HandleTurn(ctx context.Context, messages []llm.Message) (*llm.Message, error) {
	reply, handled, err := a.guardrails.Check(ctx, messages)
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	if handled {
		metrics.ChatRequests.WithLabelValues("guardrail").Inc()
		return &llm.Message{Role: "assistant", Content: reply}, nil
	}

	resp, err := a.driver.Run(ctx, messages)
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ChatRequests.WithLabelValues("model").Inc()
	return resp, nil
}
