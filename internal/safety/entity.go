package safety

// RuleSource records which path produced the active rule set, so callers
// and tests can tell a loaded configuration apart from the built-in
// fallback.
type RuleSource string

const (
	SourceLoaded  RuleSource = "loaded"
	SourceDefault RuleSource = "default"
)

// ModelPrice is the per-1k-token price of one model. Models absent from
// the table price at zero and are treated as free local models.
type ModelPrice struct {
	InputPer1KTokens  float64 `yaml:"input_per_1k_tokens"`
	OutputPer1KTokens float64 `yaml:"output_per_1k_tokens"`
}

type Budget struct {
	Models map[string]ModelPrice `yaml:"models"`
}

// RuleSet is the safety classification table. It is loaded once and
// treated as read-only for the controller's lifetime; editing the rules
// file requires a restart.
type RuleSet struct {
	GreenActions    []string   `yaml:"green_actions"`
	YellowActions   []string   `yaml:"yellow_actions"`
	RedActions      []string   `yaml:"red_actions"`
	BlockedKeywords []string   `yaml:"blocked_keywords"`
	Budget          Budget     `yaml:"budget"`
	Source          RuleSource `yaml:"-"`
}

// DefaultRuleSet is the strict fallback used when the rules resource is
// missing or corrupt: only chat and file reads are green, file creation
// and modification are yellow, everything else is red.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		GreenActions:  []string{"chat", "read_file"},
		YellowActions: []string{"create_file", "modify_file"},
		RedActions:    []string{"delete_file", "system_command"},
		Source:        SourceDefault,
	}
}

// PriceFor returns the price entry for a model, zero-valued when unknown.
func (r *RuleSet) PriceFor(model string) ModelPrice {
	if r.Budget.Models == nil {
		return ModelPrice{}
	}
	return r.Budget.Models[model]
}

// Cost prices an API call in USD.
func (r *RuleSet) Cost(model string, inputTokens, outputTokens int) float64 {
	p := r.PriceFor(model)
	inputCost := float64(inputTokens) / 1000 * p.InputPer1KTokens
	outputCost := float64(outputTokens) / 1000 * p.OutputPer1KTokens
	return inputCost + outputCost
}
