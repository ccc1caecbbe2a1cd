package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prismhq/prism/internal/eventbus"
)

const dateLayout = "2006-01-02"

// warnThreshold is the fraction of the daily budget at which a warning
// is emitted.
const warnThreshold = 0.8

// Pricer prices an API call in USD. Implemented by safety.Controller over
// the rule set's model price table.
type Pricer interface {
	Cost(model string, inputTokens, outputTokens int) float64
}

// Monitor enforces the daily budget. All ledger access goes through its
// mutex: the admission check and the commit happen under one critical
// section, so concurrent callers cannot both observe headroom and
// overshoot the ceiling.
type Monitor struct {
	mu     sync.Mutex
	repo   Repository
	pricer Pricer
	bus    *eventbus.Bus
	led    *Ledger
	now    func() time.Time
}

type MonitorOption func(*Monitor)

// WithClock overrides the monitor's clock, mainly for rollover tests.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithBus attaches an event bus for budget warning/rejection events.
func WithBus(bus *eventbus.Bus) MonitorOption {
	return func(m *Monitor) {
		m.bus = bus
	}
}

// NewMonitor loads the persisted ledger, creating a fresh one with the
// default budget when none exists or the stored one cannot be read. Load
// failure is recovered locally and never surfaced to the caller.
func NewMonitor(ctx context.Context, repo Repository, pricer Pricer, defaultBudgetUSD float64, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		repo:   repo,
		pricer: pricer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	led, err := repo.Get(ctx)
	if err != nil {
		slog.Info("no usable ledger found, starting fresh", "error", err)
		led = New(m.today(), defaultBudgetUSD)
	}
	m.led = led
	return m
}

func (m *Monitor) today() string {
	return m.now().Format(dateLayout)
}

// rolloverLocked resets the ledger the first time any operation observes
// a new calendar day. Caller must hold m.mu.
func (m *Monitor) rolloverLocked(ctx context.Context) {
	today := m.today()
	if m.led.Date == today {
		return
	}
	slog.Info("new day detected, resetting budget", "previous_date", m.led.Date, "date", today)
	m.led.Date = today
	m.led.TotalSpentToday = 0
	m.led.Transactions = nil
	m.persistLocked(ctx)
}

// persistLocked saves the ledger, logging failures without failing the
// operation. In-memory state is authoritative for the process lifetime;
// the worst outcome of a failed write is an under-persisted ledger,
// never an over-spend.
func (m *Monitor) persistLocked(ctx context.Context) {
	if err := m.repo.Upsert(ctx, m.led); err != nil {
		slog.Error("failed to persist ledger", "error", err)
	}
}

// TrackUsage admits and records a priced API call. It returns false and
// leaves the ledger untouched when the call would push the day's spend
// over budget; the caller must not proceed with the paid call.
func (m *Monitor) TrackUsage(ctx context.Context, model string, inputTokens, outputTokens int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rolloverLocked(ctx)

	cost := m.pricer.Cost(model, inputTokens, outputTokens)

	if m.led.TotalSpentToday+cost > m.led.DailyBudgetUSD {
		remaining := m.led.DailyBudgetUSD - m.led.TotalSpentToday
		slog.Warn("budget exceeded, call rejected",
			"model", model,
			"spent", fmt.Sprintf("%.4f", m.led.TotalSpentToday),
			"remaining", fmt.Sprintf("%.4f", remaining),
			"attempted", fmt.Sprintf("%.4f", cost),
		)
		if m.bus != nil {
			m.bus.PublishNew(eventbus.EventTypeBudgetRejected, model, fmt.Sprintf("attempted $%.4f with $%.4f remaining", cost, remaining), nil)
		}
		return false
	}

	wasBelowThreshold := m.led.TotalSpentToday < m.led.DailyBudgetUSD*warnThreshold

	m.led.Transactions = append(m.led.Transactions, Transaction{
		Time:         m.now().Format("15:04:05"),
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      cost,
	})
	m.led.TotalSpentToday += cost
	m.persistLocked(ctx)

	if m.led.TotalSpentToday >= m.led.DailyBudgetUSD*warnThreshold {
		slog.Warn("80% of daily budget used", "spent", fmt.Sprintf("%.4f", m.led.TotalSpentToday), "budget", fmt.Sprintf("%.4f", m.led.DailyBudgetUSD))
		// Publish only on the crossing so subscribers get one push, not
		// one per call for the rest of the day.
		if m.bus != nil && wasBelowThreshold {
			m.bus.PublishNew(eventbus.EventTypeBudgetWarning, m.led.Date, fmt.Sprintf("$%.4f of $%.4f spent", m.led.TotalSpentToday, m.led.DailyBudgetUSD), nil)
		}
	}

	return true
}

// BudgetStatus returns a snapshot of the day's spending, rolling the
// ledger over first if the date has changed.
func (m *Monitor) BudgetStatus(ctx context.Context) BudgetStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rolloverLocked(ctx)

	var pct float64
	if m.led.DailyBudgetUSD > 0 {
		pct = m.led.TotalSpentToday / m.led.DailyBudgetUSD * 100
	}
	return BudgetStatus{
		DailyBudget:       m.led.DailyBudgetUSD,
		SpentToday:        m.led.TotalSpentToday,
		Remaining:         m.led.DailyBudgetUSD - m.led.TotalSpentToday,
		PercentageUsed:    pct,
		TransactionsToday: len(m.led.Transactions),
	}
}
