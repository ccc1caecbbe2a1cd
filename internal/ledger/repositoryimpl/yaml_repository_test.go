package repositoryimpl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismhq/prism/internal/ledger"
	"github.com/prismhq/prism/pkg/cerr"
	"github.com/prismhq/prism/pkg/storage"
)

func TestYAMLRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewYAMLRepository(store, "safety/ledger.yaml")

	led := ledger.New("2026-03-14", 1.0)
	led.TotalSpentToday = 0.42
	led.Transactions = []ledger.Transaction{
		{Time: "10:15:00", Model: "sonar", InputTokens: 200, OutputTokens: 220, CostUSD: 0.42},
	}
	require.NoError(t, repo.Upsert(ctx, led))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, ledger.Version, got.LedgerVersion)
	assert.Equal(t, "2026-03-14", got.Date)
	assert.Equal(t, 1.0, got.DailyBudgetUSD)
	assert.InDelta(t, 0.42, got.TotalSpentToday, 1e-9)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "sonar", got.Transactions[0].Model)
}

func TestYAMLRepositoryMissingLedger(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewYAMLRepository(store, "safety/ledger.yaml")

	_, err = repo.Get(context.Background())
	require.Error(t, err)
	var cErr *cerr.Error
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, cerr.NotFound, cErr.Code)
}

func TestYAMLRepositoryCorruptLedger(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, "safety/ledger.yaml", []byte("{not yaml")))

	repo := NewYAMLRepository(store, "safety/ledger.yaml")
	_, err = repo.Get(ctx)
	assert.Error(t, err)
}
