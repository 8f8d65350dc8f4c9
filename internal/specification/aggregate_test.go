package specification

import (
	"testing"

	"goinsight/domain/dataset"
	"goinsight/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesTable() *dataset.Dataset {
	return testkit.Table("t", []dataset.Field{
		{Name: "region", Type: dataset.TypeNominal},
		{Name: "sales", Type: dataset.TypeQuantitative},
		{Name: "profit", Type: dataset.TypeQuantitative},
	}, map[string][]interface{}{
		"region": {"north", "south", "north", nil, "south"},
		"sales":  {10.0, 4.0, 30.0, 99.0, 6.0},
		"profit": {1.0, nil, 3.0, 9.0, nil},
	})
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		aggregator string
		north      float64
		south      float64
	}{
		{"sum", 40, 10},
		{"mean", 20, 5},
		{"median", 20, 5},
		{"max", 30, 6},
		{"min", 10, 4},
		{"count", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.aggregator, func(t *testing.T) {
			rows, err := Aggregate(salesTable(), []string{"region"}, []string{"sales"}, tt.aggregator)
			require.NoError(t, err)
			require.Len(t, rows, 2, "the record without a region is skipped")

			assert.Equal(t, "north", rows[0]["region"])
			assert.InDelta(t, tt.north, rows[0]["sales"], 1e-9)
			assert.Equal(t, "south", rows[1]["region"])
			assert.InDelta(t, tt.south, rows[1]["sales"], 1e-9)
		})
	}
}

func TestAggregateMissingMeasure(t *testing.T) {
	rows, err := Aggregate(salesTable(), []string{"region"}, []string{"profit"}, "sum")
	require.NoError(t, err)
	assert.InDelta(t, 4.0, rows[0]["profit"], 1e-9)
	assert.Nil(t, rows[1]["profit"])

	rows, err = Aggregate(salesTable(), []string{"region"}, []string{"profit"}, "count")
	require.NoError(t, err)
	assert.Equal(t, 0.0, rows[1]["profit"])
}

func TestAggregateWithoutDimensions(t *testing.T) {
	rows, err := Aggregate(salesTable(), nil, []string{"sales"}, "sum")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 149.0, rows[0]["sales"], 1e-9)
}

func TestAggregateUnknownAggregator(t *testing.T) {
	_, err := Aggregate(salesTable(), []string{"region"}, []string{"sales"}, "variance")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variance")
}
