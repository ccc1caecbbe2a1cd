// Package orchestrator routes chat queries to agent roles and their
// backing model services, admitting every call through the gate first.
package orchestrator

import (
	"context"
	"log/slog"

	"github.com/prismhq/prism/internal/action"
	"github.com/prismhq/prism/internal/gate"
	"github.com/prismhq/prism/internal/provider"
)

// Result is the outcome of one routed query. When Refused is non-empty
// the query was stopped by the gate and Reply is nil.
type Result struct {
	Agent   AgentType
	Service string
	Model   string
	Refused string
	Reply   *provider.Reply
}

type Orchestrator struct {
	gate     *gate.Gate
	registry *provider.Registry
}

func New(g *gate.Gate, registry *provider.Registry) *Orchestrator {
	return &Orchestrator{
		gate:     g,
		registry: registry,
	}
}

// Route classifies the query, picks the agent role and service, checks
// safety and budget through the gate, and executes the call. A service
// without a registered provider falls back to the local model rather
// than failing the query.
func (o *Orchestrator) Route(ctx context.Context, query string) (*Result, error) {
	agent := DetectAgent(query)
	cfg := ConfigFor(agent)

	outcome, _ := o.gate.RequestAction(ctx, action.Request{
		Type:      "chat",
		Reason:    "user query",
		AgentName: string(agent),
	}, nil)
	if outcome != action.OutcomeApproved {
		return &Result{Agent: agent, Refused: "chat not approved by safety rules"}, nil
	}

	p, ok := o.registry.Get(cfg.Service)
	if !ok {
		slog.Warn("service not available, falling back to local",
			"agent", agent, "service", cfg.Service)
		local, localOK := o.registry.Get(provider.LocalName)
		if !localOK {
			return &Result{Agent: agent, Refused: "no provider available"}, nil
		}
		p = local
		cfg = ConfigFor(AgentCompanion)
	}

	estimate := provider.EstimateTokens(cfg.SystemPrompt) + provider.EstimateTokens(query)
	if !o.gate.CheckBudget(ctx, cfg.Model, estimate) {
		slog.Warn("query refused by budget",
			"agent", agent, "model", cfg.Model, "estimated_tokens", estimate)
		return &Result{
			Agent:   agent,
			Service: cfg.Service,
			Model:   cfg.Model,
			Refused: "daily budget exhausted",
		}, nil
	}

	reply, err := p.Send(ctx, cfg.SystemPrompt, query, provider.Config{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("query routed",
		"agent", agent, "service", p.Name(), "model", cfg.Model,
		"input_tokens", reply.InputTokens, "output_tokens", reply.OutputTokens)
	return &Result{
		Agent:   agent,
		Service: p.Name(),
		Model:   cfg.Model,
		Reply:   reply,
	}, nil
}
