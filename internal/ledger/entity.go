package ledger

// Version is written into new ledgers so future schema migrations can
// tell what they are reading.
const Version = "1.0"

// Transaction is one priced API call. The list is append-only within a
// day and cleared on date rollover.
type Transaction struct {
	Time         string  `yaml:"time"` // HH:MM:SS
	Model        string  `yaml:"model"`
	InputTokens  int     `yaml:"input_tokens"`
	OutputTokens int     `yaml:"output_tokens"`
	CostUSD      float64 `yaml:"cost_usd"`
}

// Ledger is the persisted daily spending record. The core invariant:
// TotalSpentToday never exceeds DailyBudgetUSD after a committed
// transaction.
type Ledger struct {
	LedgerVersion   string        `yaml:"ledger_version"`
	Date            string        `yaml:"date"` // YYYY-MM-DD
	DailyBudgetUSD  float64       `yaml:"daily_budget_usd"`
	TotalSpentToday float64       `yaml:"total_spent_today"`
	Transactions    []Transaction `yaml:"transactions"`
}

// New creates a fresh ledger for the given day with no spend.
func New(date string, dailyBudgetUSD float64) *Ledger {
	return &Ledger{
		LedgerVersion:  Version,
		Date:           date,
		DailyBudgetUSD: dailyBudgetUSD,
	}
}

// BudgetStatus is a read-only snapshot of the day's spending. Remaining
// is not clamped: it can be reported negative if the budget was lowered
// between loads.
type BudgetStatus struct {
	DailyBudget       float64 `json:"daily_budget"`
	SpentToday        float64 `json:"spent_today"`
	Remaining         float64 `json:"remaining"`
	PercentageUsed    float64 `json:"percentage_used"`
	TransactionsToday int     `json:"transactions_today"`
}
