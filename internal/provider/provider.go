// Package provider defines the capability contract the orchestrator
// consumes after the gate admits a spend. Concrete cloud clients live
// outside this module; only the local echo provider ships here.
package provider

import "context"

type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

type Reply struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Provider is one model backend. Send must honor ctx cancellation.
type Provider interface {
	Name() string
	Send(ctx context.Context, systemPrompt, userPrompt string, cfg Config) (*Reply, error)
}
