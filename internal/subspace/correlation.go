package subspace

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// correlationMatrix computes Pearson correlation between the grouped sums of every
// measure pair. The result is symmetric with a unit diagonal; undefined
// correlations (fewer than two groups, zero variance) are 0.
func correlationMatrix(t groupTable, measures []string) [][]float64 {
	k := len(measures)
	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		sym.SetSym(i, i, 1)
		for j := i + 1; j < k; j++ {
			sym.SetSym(i, j, pearson(t.sums[measures[i]], t.sums[measures[j]]))
		}
	}

	out := make([][]float64, k)
	for i := range out {
		out[i] = make([]float64, k)
		for j := range out[i] {
			out[i][j] = sym.At(i, j)
		}
	}
	return out
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return clamp(r, -1, 1)
}

// CorrelationStrength is the mean absolute off-diagonal correlation; 0 for a single measure
func CorrelationStrength(m [][]float64) float64 {
	k := len(m)
	if k < 2 {
		return 0
	}
	var sum float64
	var n int
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			sum += math.Abs(m[i][j])
			n++
		}
	}
	return sum / float64(n)
}
