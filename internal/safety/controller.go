package safety

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/prismhq/prism/internal/action"
)

// Controller classifies actions against the loaded rule set. It is pure
// and never fails: unknown action types classify red.
type Controller struct {
	rules *RuleSet
}

// NewController loads the rule set from the repository. A missing or
// corrupt rules resource is not fatal: the strict built-in default is
// substituted and the substitution logged.
func NewController(ctx context.Context, repo Repository) *Controller {
	rules, err := repo.Get(ctx)
	if err != nil {
		slog.Warn("failed to load safety rules, falling back to strict defaults", "error", err)
		rules = DefaultRuleSet()
	}
	return &Controller{rules: rules}
}

// NewControllerWithRules wires an already-built rule set, mainly for tests.
func NewControllerWithRules(rules *RuleSet) *Controller {
	return &Controller{rules: rules}
}

// Classify maps an action type to its tier. Anything not listed as green
// or yellow is red, including action types no list mentions.
func (c *Controller) Classify(actionType string) action.Tier {
	if slices.Contains(c.rules.GreenActions, actionType) {
		return action.TierGreen
	}
	if slices.Contains(c.rules.YellowActions, actionType) {
		return action.TierYellow
	}
	return action.TierRed
}

// BlockedKeyword reports whether the command contains a blocked keyword,
// matched case-insensitively as a substring, and returns the first match.
func (c *Controller) BlockedKeyword(command string) (string, bool) {
	commandLower := strings.ToLower(command)
	for _, keyword := range c.rules.BlockedKeywords {
		if strings.Contains(commandLower, strings.ToLower(keyword)) {
			slog.Warn("command contains blocked keyword", "keyword", keyword)
			return keyword, true
		}
	}
	return "", false
}

// Rules exposes the active rule set. Callers must treat it as read-only.
func (c *Controller) Rules() *RuleSet {
	return c.rules
}

// Cost prices an API call using the rule set's model price table,
// satisfying ledger.Pricer.
func (c *Controller) Cost(model string, inputTokens, outputTokens int) float64 {
	return c.rules.Cost(model, inputTokens, outputTokens)
}
