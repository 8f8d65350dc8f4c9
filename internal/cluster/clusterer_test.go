package cluster

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"goinsight/domain/core"
	"goinsight/domain/insight"
	"goinsight/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mk(dims, measures []string, score, r float64) insight.Subspace {
	ms := make([]insight.Measure, len(measures))
	matrix := make([][]float64, len(measures))
	for i, m := range measures {
		ms[i] = insight.Measure{Name: m, Value: 0.5}
		matrix[i] = make([]float64, len(measures))
		for j := range matrix[i] {
			if i == j {
				matrix[i][j] = 1
			} else {
				matrix[i][j] = r
			}
		}
	}
	return insight.Subspace{Dimensions: dims, Measures: ms, CorrelationMatrix: matrix, Score: score}
}

// tenSubspaces has four subspaces over {region} and six spread over other dimension sets
func tenSubspaces() []insight.Subspace {
	return []insight.Subspace{
		mk([]string{"region"}, []string{"sales"}, 0.61, 0),
		mk([]string{"region"}, []string{"profit"}, 0.58, 0),
		mk([]string{"region"}, []string{"sales", "profit"}, 0.9, 0.8),
		mk([]string{"region"}, []string{"quantity"}, 0.4, 0),
		mk([]string{"year"}, []string{"sales"}, 0.7, 0),
		mk([]string{"year", "region"}, []string{"sales", "profit"}, 0.85, 0.6),
		mk([]string{"category"}, []string{"quantity"}, 0.3, 0),
		mk([]string{"category", "year"}, []string{"profit"}, 0.5, 0),
		mk([]string{"store"}, []string{"sales", "quantity"}, 0.2, 0.1),
		mk([]string{"store", "category"}, []string{"sales"}, 0.1, 0),
	}
}

func clusterOf(t *testing.T, spaces []insight.ViewSpace, key string) int {
	t.Helper()
	for i, vs := range spaces {
		for _, m := range vs.Members {
			if m == key {
				return i
			}
		}
	}
	t.Fatalf("subspace %s not in any cluster", key)
	return -1
}

func TestClusterRejectsInvalidGroupNumber(t *testing.T) {
	c := NewViewSpaceClusterer(0.85, nil)
	for _, k := range []int{0, -3} {
		_, err := c.Cluster(context.Background(), k, tenSubspaces())
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, core.ErrInvalidGroupNumber))
		assert.Equal(t, errors.CodeClustering, errors.GetCode(err))
	}
}

func TestClusterEmptyInput(t *testing.T) {
	got, err := NewViewSpaceClusterer(0.85, nil).Cluster(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClusterMergesSharedDimensionSets(t *testing.T) {
	input := tenSubspaces()
	got, err := NewViewSpaceClusterer(0.85, nil).Cluster(context.Background(), 3, input)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), 3)

	region := clusterOf(t, got, input[0].Key())
	for _, s := range input[1:4] {
		assert.Equal(t, region, clusterOf(t, got, s.Key()))
	}
}

func TestClusterIsAPartition(t *testing.T) {
	input := tenSubspaces()
	for k := 1; k <= 8; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			got, err := NewViewSpaceClusterer(0.85, nil).Cluster(context.Background(), k, input)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), k)

			seen := map[string]int{}
			for _, vs := range got {
				for _, m := range vs.Members {
					seen[m]++
				}
			}
			assert.Len(t, seen, len(input))
			for key, n := range seen {
				assert.Equal(t, 1, n, key)
			}
		})
	}
}

func TestClusterOrderAndRepresentatives(t *testing.T) {
	input := tenSubspaces()
	scores := map[string]float64{}
	for _, s := range input {
		scores[s.Key()] = s.Score
	}

	got, err := NewViewSpaceClusterer(0.85, nil).Cluster(context.Background(), 4, input)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for i, vs := range got {
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Score, vs.Score)
		}
		for _, m := range vs.Members {
			assert.LessOrEqual(t, scores[m], vs.Score, "representative is the best member")
		}
	}
	assert.Equal(t, []string{"region"}, got[0].Dimensions)
	assert.Equal(t, []string{"sales", "profit"}, got[0].MeasureNames())
}

func TestClusterKeepsDistinctSpacesUnderBudget(t *testing.T) {
	input := []insight.Subspace{
		mk([]string{"a"}, []string{"x"}, 0.9, 0),
		mk([]string{"b"}, []string{"x"}, 0.8, 0),
		mk([]string{"a", "b"}, []string{"x"}, 0.7, 0),
	}

	got, err := NewViewSpaceClusterer(0.85, nil).Cluster(context.Background(), 5, input)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// {a,b} vs {a}: 0.5*0.5 + 0.3 + 0.2 = 0.75, above a lower threshold
	got, err = NewViewSpaceClusterer(0.7, nil).Cluster(context.Background(), 5, input)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, clusterOf(t, got, input[0].Key()), clusterOf(t, got, input[2].Key()))
}

func TestClusterDoesNotMutateInput(t *testing.T) {
	input := tenSubspaces()
	before := make([]insight.Subspace, len(input))
	for i, s := range input {
		before[i] = s.Clone()
	}

	_, err := NewViewSpaceClusterer(0.85, nil).Cluster(context.Background(), 2, input)
	require.NoError(t, err)
	assert.Equal(t, before, input)
}

func TestClusterDeterministic(t *testing.T) {
	c := NewViewSpaceClusterer(0.85, nil)
	a, err := c.Cluster(context.Background(), 3, tenSubspaces())
	require.NoError(t, err)

	reversed := tenSubspaces()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	b, err := c.Cluster(context.Background(), 3, reversed)
	require.NoError(t, err)
	assert.Equal(t, a, b, "input order does not change the result")
}

func TestClusterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewViewSpaceClusterer(0.85, nil).Cluster(ctx, 2, tenSubspaces())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Equal(t, errors.CodeClustering, errors.GetCode(err))
}

func TestSimilarity(t *testing.T) {
	a := mk([]string{"region"}, []string{"sales", "profit"}, 1, 0.8)
	assert.InDelta(t, 1.0, Similarity(a, a), 1e-9)

	b := mk([]string{"year"}, []string{"quantity"}, 1, 0)
	// disjoint dims and measures; strengths 0.8 and 0
	assert.InDelta(t, 0.2*0.2, Similarity(a, b), 1e-9)
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestClusterKeepsCommaNamedDimensionApart(t *testing.T) {
	input := []insight.Subspace{
		mk([]string{"a,b"}, []string{"x"}, 0.9, 0),
		mk([]string{"a", "b"}, []string{"x"}, 0.8, 0),
	}

	got, err := NewViewSpaceClusterer(0.99, nil).Cluster(context.Background(), 5, input)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a,b"}, got[0].Dimensions)
	assert.NotEqual(t, clusterOf(t, got, input[0].Key()), clusterOf(t, got, input[1].Key()))
}
