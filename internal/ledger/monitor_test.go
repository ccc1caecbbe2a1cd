package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismhq/prism/internal/eventbus"
)

// memoryRepository keeps the ledger in memory for monitor tests.
type memoryRepository struct {
	led     *Ledger
	upserts int
}

func (r *memoryRepository) Get(context.Context) (*Ledger, error) {
	if r.led == nil {
		return nil, errors.New("not found")
	}
	return r.led, nil
}

func (r *memoryRepository) Upsert(_ context.Context, l *Ledger) error {
	r.led = l
	r.upserts++
	return nil
}

// flatPricer charges $10 per 1M input tokens regardless of model.
type flatPricer struct{}

func (flatPricer) Cost(_ string, inputTokens, outputTokens int) float64 {
	return float64(inputTokens+outputTokens) / 1000 * 0.01
}

// freePricer prices everything at zero.
type freePricer struct{}

func (freePricer) Cost(string, int, int) float64 { return 0 }

func TestMonitorStartsFreshWithoutLedger(t *testing.T) {
	ctx := context.Background()
	m := NewMonitor(ctx, &memoryRepository{}, freePricer{}, 1.0)

	status := m.BudgetStatus(ctx)
	assert.Equal(t, 1.0, status.DailyBudget)
	assert.Zero(t, status.SpentToday)
	assert.Zero(t, status.TransactionsToday)
}

func TestMonitorAdmitsWithinBudget(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepository{}
	m := NewMonitor(ctx, repo, flatPricer{}, 1.0)

	// 50k input tokens at $10/1M cost $0.50.
	require.True(t, m.TrackUsage(ctx, "gpt-4-turbo-preview", 50_000, 0))

	status := m.BudgetStatus(ctx)
	assert.InDelta(t, 0.5, status.SpentToday, 1e-9)
	assert.InDelta(t, 0.5, status.Remaining, 1e-9)
	assert.Equal(t, 1, status.TransactionsToday)
	assert.Equal(t, 1, repo.upserts)
}

func TestMonitorRejectsOverBudget(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepository{}
	m := NewMonitor(ctx, repo, flatPricer{}, 1.0)

	require.True(t, m.TrackUsage(ctx, "gpt-4-turbo-preview", 50_000, 0))

	// 60k more would cost $0.60, pushing spend to $1.10 over the $1.00
	// budget. The rejection must leave the ledger exactly as it was.
	assert.False(t, m.TrackUsage(ctx, "gpt-4-turbo-preview", 60_000, 0))

	status := m.BudgetStatus(ctx)
	assert.InDelta(t, 0.5, status.SpentToday, 1e-9)
	assert.Equal(t, 1, status.TransactionsToday)

	// Rejection is repeatable: the same refused call never dents the ledger.
	assert.False(t, m.TrackUsage(ctx, "gpt-4-turbo-preview", 60_000, 0))
	assert.InDelta(t, 0.5, m.BudgetStatus(ctx).SpentToday, 1e-9)

	// An exact fit is still admitted.
	require.True(t, m.TrackUsage(ctx, "gpt-4-turbo-preview", 50_000, 0))
	assert.InDelta(t, 1.0, m.BudgetStatus(ctx).SpentToday, 1e-9)
}

func TestMonitorFreeModelAlwaysAdmitted(t *testing.T) {
	ctx := context.Background()
	m := NewMonitor(ctx, &memoryRepository{}, freePricer{}, 0)

	for i := 0; i < 10; i++ {
		require.True(t, m.TrackUsage(ctx, "llama3.1:8b", 100_000, 100_000))
	}
	status := m.BudgetStatus(ctx)
	assert.Zero(t, status.SpentToday)
	assert.Zero(t, status.PercentageUsed)
	assert.Equal(t, 10, status.TransactionsToday)
}

func TestMonitorDayRollover(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepository{}

	current := time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC)
	m := NewMonitor(ctx, repo, flatPricer{}, 1.0, WithClock(func() time.Time { return current }))

	require.True(t, m.TrackUsage(ctx, "claude-3-5-sonnet-20241022", 90_000, 0))
	assert.InDelta(t, 0.9, m.BudgetStatus(ctx).SpentToday, 1e-9)

	// Midnight passes; the next observation resets spend and transactions.
	current = current.Add(20 * time.Minute)
	status := m.BudgetStatus(ctx)
	assert.Zero(t, status.SpentToday)
	assert.Zero(t, status.TransactionsToday)
	assert.Equal(t, "2026-03-15", repo.led.Date)

	// Yesterday's spend no longer counts against today.
	require.True(t, m.TrackUsage(ctx, "claude-3-5-sonnet-20241022", 90_000, 0))
}

func TestMonitorResumesPersistedLedger(t *testing.T) {
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")
	repo := &memoryRepository{
		led: &Ledger{
			LedgerVersion:   Version,
			Date:            today,
			DailyBudgetUSD:  1.0,
			TotalSpentToday: 0.95,
			Transactions:    []Transaction{{Time: "09:00:00", Model: "sonar", CostUSD: 0.95}},
		},
	}
	m := NewMonitor(ctx, repo, flatPricer{}, 1.0)

	// $0.95 already spent today: another $0.10 call must be refused.
	assert.False(t, m.TrackUsage(ctx, "sonar", 10_000, 0))
	assert.InDelta(t, 0.95, m.BudgetStatus(ctx).SpentToday, 1e-9)
}

func TestMonitorWarningEventOnThresholdCrossing(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New()
	_, events := bus.Subscribe(16)

	m := NewMonitor(ctx, &memoryRepository{}, flatPricer{}, 1.0, WithBus(bus))

	require.True(t, m.TrackUsage(ctx, "sonar", 70_000, 0))
	require.True(t, m.TrackUsage(ctx, "sonar", 15_000, 0)) // crosses 80%
	require.True(t, m.TrackUsage(ctx, "sonar", 10_000, 0)) // still above, no repeat

	var warnings int
	for {
		select {
		case e := <-events:
			if e.Type == eventbus.EventTypeBudgetWarning {
				warnings++
			}
		default:
			assert.Equal(t, 1, warnings)
			return
		}
	}
}

func TestMonitorRejectionEvent(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New()
	_, events := bus.Subscribe(16)

	m := NewMonitor(ctx, &memoryRepository{}, flatPricer{}, 0.5, WithBus(bus))
	assert.False(t, m.TrackUsage(ctx, "gpt-4-turbo-preview", 60_000, 0))

	select {
	case e := <-events:
		assert.Equal(t, eventbus.EventTypeBudgetRejected, e.Type)
		assert.Equal(t, "gpt-4-turbo-preview", e.ResourceID)
	default:
		t.Fatal("expected a budget rejection event")
	}
}
