package repositoryimpl

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/prismhq/prism/internal/ledger"
	"github.com/prismhq/prism/pkg/cerr"
	"github.com/prismhq/prism/pkg/storage"
)

// YAMLRepository persists the ledger as a whole-file YAML resource. The
// storage layer writes atomically, so a crash mid-save leaves the
// previous ledger intact rather than a truncated one.
type YAMLRepository struct {
	storage storage.Storage
	path    string
}

func NewYAMLRepository(s storage.Storage, path string) *YAMLRepository {
	return &YAMLRepository{storage: s, path: path}
}

func (r *YAMLRepository) Get(ctx context.Context) (*ledger.Ledger, error) {
	data, err := r.storage.Read(ctx, r.path)
	if err != nil {
		return nil, cerr.WrapStorageReadError("ledger", err)
	}
	var l ledger.Ledger
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal ledger: %w", err))
	}
	return &l, nil
}

func (r *YAMLRepository) Upsert(ctx context.Context, l *ledger.Ledger) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal ledger: %w", err))
	}
	if err := r.storage.Write(ctx, r.path, data); err != nil {
		return cerr.WrapStorageWriteError("ledger", err)
	}
	return nil
}
