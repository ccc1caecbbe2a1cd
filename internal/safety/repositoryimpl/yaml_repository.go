package repositoryimpl

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/prismhq/prism/internal/safety"
	"github.com/prismhq/prism/pkg/cerr"
	"github.com/prismhq/prism/pkg/storage"
)

// YAMLRepository reads the rule set from a YAML resource in the Ray
// folder. There is no Upsert: rules are edited out of band and picked up
// on restart.
type YAMLRepository struct {
	storage storage.Storage
	path    string
}

func NewYAMLRepository(s storage.Storage, path string) *YAMLRepository {
	return &YAMLRepository{storage: s, path: path}
}

func (r *YAMLRepository) Get(ctx context.Context) (*safety.RuleSet, error) {
	data, err := r.storage.Read(ctx, r.path)
	if err != nil {
		return nil, cerr.WrapStorageReadError("safety rules", err)
	}
	var rs safety.RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal safety rules: %w", err))
	}
	rs.Source = safety.SourceLoaded
	return &rs, nil
}
