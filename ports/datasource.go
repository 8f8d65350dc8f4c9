package ports

import (
	"context"

	"goinsight/domain/dataset"
)

// DataSourcePort loads a dataset with declared field types.
// Loaders never mutate a dataset after handing it over.
type DataSourcePort interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
	Name() string
}
