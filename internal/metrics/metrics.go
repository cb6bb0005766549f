// Package metrics holds the Prometheus collectors shared across docedit.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolCalls counts tool executions by tool name and outcome (ok, failed).
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docedit_tool_calls_total",
		Help: "Tool executions by tool and outcome",
	}, []string{"tool", "outcome"})

	// Approvals counts resolved approval requests by decision.
	Approvals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docedit_approvals_total",
		Help: "Resolved approval requests by decision",
	}, []string{"decision"})

	IndexBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docedit_index_builds_total",
		Help: "Document index builds",
	})

	IndexBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docedit_index_build_duration_seconds",
		Help:    "Time to load and index a document",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
	})

	// ModelTurns counts model calls by outcome (text, tool_calls, error).
	ModelTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docedit_model_turns_total",
		Help: "Model turns by outcome",
	}, []string{"outcome"})
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)
