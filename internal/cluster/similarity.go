package cluster

import (
	"math"

	"goinsight/domain/insight"
	"goinsight/internal/subspace"
)

// Similarity weights; they sum to 1 so similarity stays in [0, 1]
const (
	dimensionWeight   = 0.5
	measureWeight     = 0.3
	correlationWeight = 0.2
)

// point is a subspace reduced to what similarity looks at
type point struct {
	dims     map[string]bool
	measures map[string]bool
	strength float64
}

func newPoint(s insight.Subspace) point {
	return point{
		dims:     toSet(s.Dimensions),
		measures: toSet(s.MeasureNames()),
		strength: subspace.CorrelationStrength(s.CorrelationMatrix),
	}
}

// Similarity compares two subspaces by shared dimensions, shared measures and
// how alike their measure correlation structure is
func Similarity(a, b insight.Subspace) float64 {
	return newPoint(a).similarity(newPoint(b))
}

func (p point) similarity(q point) float64 {
	corr := 1 - math.Abs(p.strength-q.strength)
	return dimensionWeight*jaccard(p.dims, q.dims) +
		measureWeight*jaccard(p.measures, q.measures) +
		correlationWeight*corr
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for x := range a {
		if b[x] {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func toSet(xs []string) map[string]bool {
	set := make(map[string]bool, len(xs))
	for _, x := range xs {
		set[x] = true
	}
	return set
}
