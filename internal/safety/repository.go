package safety

import "context"

type Repository interface {
	Get(ctx context.Context) (*RuleSet, error)
}
