package gate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismhq/prism/internal/action"
	"github.com/prismhq/prism/internal/approval"
	"github.com/prismhq/prism/internal/eventbus"
	"github.com/prismhq/prism/internal/ledger"
	"github.com/prismhq/prism/internal/safety"
)

type memoryLedgerRepository struct {
	led *ledger.Ledger
}

func (r *memoryLedgerRepository) Get(context.Context) (*ledger.Ledger, error) {
	if r.led == nil {
		return nil, context.Canceled
	}
	return r.led, nil
}

func (r *memoryLedgerRepository) Upsert(_ context.Context, l *ledger.Ledger) error {
	r.led = l
	return nil
}

func newTestGate(t *testing.T, budgetUSD float64) (*Gate, *approval.Store, *eventbus.Bus) {
	t.Helper()

	controller := safety.NewControllerWithRules(&safety.RuleSet{
		GreenActions:    []string{"chat", "read_file"},
		YellowActions:   []string{"create_file", "modify_file"},
		RedActions:      []string{"delete_file", "system_command"},
		BlockedKeywords: []string{"rm -rf"},
		Budget: safety.Budget{
			Models: map[string]safety.ModelPrice{
				"gpt-4-turbo-preview": {InputPer1KTokens: 0.01, OutputPer1KTokens: 0.03},
			},
		},
		Source: safety.SourceLoaded,
	})
	monitor := ledger.NewMonitor(context.Background(), &memoryLedgerRepository{}, controller, budgetUSD)
	approvals := approval.NewStore()
	bus := eventbus.New()
	return New(controller, monitor, approvals, bus), approvals, bus
}

func TestGateGreenApprovedWithoutDecider(t *testing.T) {
	g, approvals, _ := newTestGate(t, 1.0)

	deciderCalled := false
	outcome, pending := g.RequestAction(context.Background(), action.Request{Type: "chat"}, func(context.Context, action.Request) bool {
		deciderCalled = true
		return false
	})

	assert.Equal(t, action.OutcomeApproved, outcome)
	assert.Nil(t, pending)
	assert.False(t, deciderCalled, "green actions must never reach the decider")
	assert.Zero(t, approvals.Len())
}

func TestGateYellowApprovedWithNotification(t *testing.T) {
	g, _, bus := newTestGate(t, 1.0)
	_, events := bus.Subscribe(4)

	outcome, pending := g.RequestAction(context.Background(), action.Request{Type: "create_file", Reason: "save notes"}, nil)

	assert.Equal(t, action.OutcomeApproved, outcome)
	assert.Nil(t, pending)

	select {
	case e := <-events:
		assert.Equal(t, eventbus.EventTypeActionNotify, e.Type)
		assert.Equal(t, "create_file", e.ResourceID)
	default:
		t.Fatal("expected a notification event for the yellow action")
	}
}

func TestGateRedWithDecider(t *testing.T) {
	g, approvals, _ := newTestGate(t, 1.0)
	ctx := context.Background()

	outcome, _ := g.RequestAction(ctx, action.Request{Type: "delete_file"}, func(context.Context, action.Request) bool {
		return true
	})
	assert.Equal(t, action.OutcomeApproved, outcome)

	outcome, _ = g.RequestAction(ctx, action.Request{Type: "delete_file"}, func(context.Context, action.Request) bool {
		return false
	})
	assert.Equal(t, action.OutcomeBlocked, outcome)

	// Synchronous decisions never park anything.
	assert.Zero(t, approvals.Len())
}

func TestGateRedWithoutDeciderParksPending(t *testing.T) {
	g, approvals, bus := newTestGate(t, 1.0)
	_, events := bus.Subscribe(4)

	req := action.Request{
		Type:       "system_command",
		Parameters: map[string]any{"command": "apt-get   install jq"},
		Reason:     "need jq for parsing",
		AgentName:  "coder",
	}
	outcome, pending := g.RequestAction(context.Background(), req, nil)

	assert.Equal(t, action.OutcomePending, outcome)
	require.NotNil(t, pending)

	stored, ok := approvals.Get(pending.ID)
	require.True(t, ok)
	assert.Equal(t, "system_command", stored.Action.Type)
	assert.Equal(t, "coder", stored.Action.AgentName)

	select {
	case e := <-events:
		assert.Equal(t, eventbus.EventTypeApprovalRequested, e.Type)
		assert.Equal(t, pending.ID, e.ResourceID)
		assert.Contains(t, e.Metadata, "command")
	default:
		t.Fatal("expected an approval-requested event")
	}
}

func TestGateDefaultsAgentName(t *testing.T) {
	g, approvals, _ := newTestGate(t, 1.0)

	_, pending := g.RequestAction(context.Background(), action.Request{Type: "delete_file"}, nil)
	require.NotNil(t, pending)

	stored, ok := approvals.Get(pending.ID)
	require.True(t, ok)
	assert.Equal(t, action.DefaultAgentName, stored.Action.AgentName)
}

func TestGateCheckBudget(t *testing.T) {
	g, _, _ := newTestGate(t, 1.0)
	ctx := context.Background()

	assert.True(t, g.CheckBudget(ctx, "gpt-4-turbo-preview", 50_000))
	assert.False(t, g.CheckBudget(ctx, "gpt-4-turbo-preview", 60_000))

	status := g.BudgetStatus(ctx)
	assert.InDelta(t, 0.5, status.SpentToday, 1e-9)
	assert.Equal(t, 1, status.TransactionsToday)
}

func TestGateCheckCommand(t *testing.T) {
	g, _, _ := newTestGate(t, 1.0)

	keyword, blocked := g.CheckCommand("sudo rm -rf /")
	assert.True(t, blocked)
	assert.Equal(t, "rm -rf", keyword)

	_, blocked = g.CheckCommand("echo hello")
	assert.False(t, blocked)
}
