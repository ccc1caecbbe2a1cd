package ledger

import "context"

type Repository interface {
	Get(ctx context.Context) (*Ledger, error)
	Upsert(ctx context.Context, l *Ledger) error
}
