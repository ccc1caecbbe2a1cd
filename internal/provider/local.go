package provider

import (
	"context"
	"strings"
)

// LocalName is the service name of the always-available local provider.
const LocalName = "local"

// LocalModel is zero-priced in the rules budget table.
const LocalModel = "llama3.1:8b"

// Local is a stand-in for an on-device model runtime. It costs nothing,
// so the budget gate always admits it, and it answers with a canned
// acknowledgement until a real runtime is attached.
type Local struct{}

func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Name() string {
	return LocalName
}

func (l *Local) Send(ctx context.Context, _, userPrompt string, _ Config) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := "I heard you. The local model runtime is not attached yet."
	return &Reply{
		Text:         text,
		InputTokens:  EstimateTokens(userPrompt),
		OutputTokens: EstimateTokens(text),
	}, nil
}

// EstimateTokens approximates token counts at four characters per token.
func EstimateTokens(s string) int {
	n := len(strings.TrimSpace(s)) / 4
	if n < 1 {
		n = 1
	}
	return n
}
