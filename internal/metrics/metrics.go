// Package metrics exposes Prometheus instrumentation for the assistant.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatRequests counts chat turns by outcome: guardrail, model or error.
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lex_chat_requests_total",
		Help: "Chat turns handled, labelled by outcome.",
	}, []string{"outcome"})

	// GuardrailHits counts deterministic rule matches by rule name.
	GuardrailHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lex_guardrail_hits_total",
		Help: "Guardrail rule matches.",
	}, []string{"rule"})

	// ToolExecutions counts tool runs by tool name and status (ok or error).
	ToolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lex_tool_executions_total",
		Help: "Tool executions, labelled by tool and status.",
	}, []string{"tool", "status"})

	// BackendDuration tracks model backend round-trip latency.
	BackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lex_backend_request_duration_seconds",
		Help:    "Model backend request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
)
