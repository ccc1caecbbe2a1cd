package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismhq/prism/internal/pushsubscription"
	"github.com/prismhq/prism/pkg/cerr"
	"github.com/prismhq/prism/pkg/storage"
)

func newTestRepository(t *testing.T) *YAMLRepository {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(store)
}

func TestRepositoryCreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(ctx, &pushsubscription.Subscription{
		ID:       "01HZXK",
		Endpoint: "https://push.example/a",
	}))
	require.NoError(t, repo.Create(ctx, &pushsubscription.Subscription{
		ID:       "01HZXM",
		Endpoint: "https://push.example/b",
	}))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "https://push.example/a", all[0].Endpoint)
}

func TestRepositoryCreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	sub := &pushsubscription.Subscription{ID: "01HZXK", Endpoint: "https://push.example/a"}
	require.NoError(t, repo.Create(ctx, sub))

	err := repo.Create(ctx, sub)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))
}

func TestRepositoryFindByEndpoint(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(ctx, &pushsubscription.Subscription{
		ID:       "01HZXK",
		Endpoint: "https://push.example/a",
	}))

	found, err := repo.FindByEndpoint(ctx, "https://push.example/a")
	require.NoError(t, err)
	assert.Equal(t, "01HZXK", found.ID)

	_, err = repo.FindByEndpoint(ctx, "https://push.example/missing")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(ctx, &pushsubscription.Subscription{
		ID:       "01HZXK",
		Endpoint: "https://push.example/a",
	}))
	require.NoError(t, repo.Delete(ctx, "01HZXK"))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = repo.Delete(ctx, "01HZXK")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}
