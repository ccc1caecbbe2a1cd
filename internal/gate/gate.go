// Package gate implements the main control program: the single choke
// point every outbound action and every billed model call passes
// through. Decisions come back as data; the gate never panics and never
// returns errors for the caller to branch on.
package gate

import (
	"context"
	"log/slog"

	"github.com/prismhq/prism/internal/action"
	"github.com/prismhq/prism/internal/approval"
	"github.com/prismhq/prism/internal/eventbus"
	"github.com/prismhq/prism/internal/ledger"
	"github.com/prismhq/prism/internal/safety"
)

// DecideFunc resolves a red-tier action synchronously. It is the one
// human-in-the-loop checkpoint and may block until a decision arrives;
// implementations should honor ctx cancellation and answer false when
// the context is done.
type DecideFunc func(ctx context.Context, req action.Request) bool

// Gate combines the safety controller and the budget monitor. One gate
// exists per running identity and exclusively owns both.
type Gate struct {
	controller *safety.Controller
	monitor    *ledger.Monitor
	approvals  *approval.Store
	bus        *eventbus.Bus
}

func New(controller *safety.Controller, monitor *ledger.Monitor, approvals *approval.Store, bus *eventbus.Bus) *Gate {
	return &Gate{
		controller: controller,
		monitor:    monitor,
		approvals:  approvals,
		bus:        bus,
	}
}

// RequestAction classifies the action and runs it through the tier state
// machine. Green approves immediately. Yellow approves and raises a
// notification event for the UI layer. Red defers to the decider when
// one is supplied, otherwise parks the action as pending and returns the
// pending entry alongside the outcome.
func (g *Gate) RequestAction(ctx context.Context, req action.Request, decide DecideFunc) (action.Outcome, *approval.Pending) {
	if req.AgentName == "" {
		req.AgentName = action.DefaultAgentName
	}

	tier := g.controller.Classify(req.Type)
	slog.Info("action classified", "action_type", req.Type, "tier", tier.String(), "agent", req.AgentName)

	switch tier {
	case action.TierGreen:
		return action.OutcomeApproved, nil

	case action.TierYellow:
		slog.Info("yellow action executing with notification", "action_type", req.Type, "reason", req.Reason)
		g.bus.PublishNew(eventbus.EventTypeActionNotify, req.Type, req.Reason, map[string]string{
			"agent_name": req.AgentName,
		})
		return action.OutcomeApproved, nil

	default:
		slog.Info("red action requires approval", "action_type", req.Type, "reason", req.Reason)

		if decide != nil {
			if decide(ctx, req) {
				slog.Info("user approved action", "action_type", req.Type)
				return action.OutcomeApproved, nil
			}
			slog.Info("user denied action", "action_type", req.Type, "reason", req.Reason)
			g.bus.PublishNew(eventbus.EventTypeActionBlocked, req.Type, "denied by user", map[string]string{
				"agent_name": req.AgentName,
			})
			return action.OutcomeBlocked, nil
		}

		p := g.approvals.Add(req)
		metadata := map[string]string{
			"action_type": req.Type,
			"agent_name":  req.AgentName,
		}
		if cmd, ok := req.Command(); ok {
			metadata["command"] = cmd
		}
		g.bus.PublishNew(eventbus.EventTypeApprovalRequested, p.ID, req.Reason, metadata)
		return action.OutcomePending, p
	}
}

// CheckBudget pre-charges an estimated call before it is issued. The
// estimate covers input tokens only; actual usage is not reconciled
// afterwards.
func (g *Gate) CheckBudget(ctx context.Context, model string, estimatedTokens int) bool {
	return g.monitor.TrackUsage(ctx, model, estimatedTokens, 0)
}

// CheckCommand rejects a command outright when it contains a blocked
// keyword, before any classification happens.
func (g *Gate) CheckCommand(command string) (string, bool) {
	return g.controller.BlockedKeyword(command)
}

func (g *Gate) BudgetStatus(ctx context.Context) ledger.BudgetStatus {
	return g.monitor.BudgetStatus(ctx)
}

func (g *Gate) Rules() *safety.RuleSet {
	return g.controller.Rules()
}
