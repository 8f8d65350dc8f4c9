package testkit

import (
	"context"
	"io"

	"goinsight/domain/dataset"
	"goinsight/internal"
	"goinsight/internal/config"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	retail RetailGeneratorConfig
}

// NewTestKit creates a new test kit with the default retail fixture
func NewTestKit() *TestKit {
	return &TestKit{retail: DefaultRetailConfig()}
}

// WithRetailConfig swaps the generator configuration
func (t *TestKit) WithRetailConfig(cfg RetailGeneratorConfig) *TestKit {
	t.retail = cfg
	return t
}

// RetailDataset generates a fresh retail dataset
func (t *TestKit) RetailDataset() *dataset.Dataset {
	return NewRetailDataGenerator(t.retail).Generate()
}

// Config returns the default configuration
func (t *TestKit) Config() *config.Config {
	return config.Default()
}

// Logger returns a logger that discards everything
func (t *TestKit) Logger() *internal.Logger {
	return internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard)
}

// StaticSource serves a prebuilt dataset as a data source
type StaticSource struct {
	DS  *dataset.Dataset
	Err error
}

// Load returns the wrapped dataset or error
func (s StaticSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.DS, nil
}

// Name identifies the source in logs
func (s StaticSource) Name() string {
	if s.DS == nil {
		return "static"
	}
	return "static:" + s.DS.Name
}

// Table builds a small dataset from column-major literals, for hand-computed expectations
func Table(name string, fields []dataset.Field, columns map[string][]interface{}) *dataset.Dataset {
	n := 0
	for _, col := range columns {
		if len(col) > n {
			n = len(col)
		}
	}
	records := make([]dataset.Record, n)
	for i := range records {
		rec := dataset.Record{}
		for key, col := range columns {
			if i < len(col) {
				rec[key] = col[i]
			}
		}
		records[i] = rec
	}
	return dataset.New(name, fields, records)
}
