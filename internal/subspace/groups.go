package subspace

import (
	"math"
	"strings"

	"goinsight/domain/core"
	"goinsight/domain/dataset"

	"gonum.org/v1/gonum/stat"
)

const keySeparator = core.NameSeparator

// groupTable holds per-group measure sums for one dimension combination
type groupTable struct {
	keys []string
	sums map[string][]float64
}

// buildGroupTable groups ds by dims and sums each measure per group.
// Records missing any dimension value are left out; missing measure cells count as zero.
func buildGroupTable(ds *dataset.Dataset, dims, measures []string) groupTable {
	index := make(map[string]int)
	t := groupTable{sums: make(map[string][]float64, len(measures))}

	parts := make([]string, len(dims))
	for _, r := range ds.Records {
		complete := true
		for i, d := range dims {
			k, ok := dataset.ValueKey(r[d])
			if !ok {
				complete = false
				break
			}
			parts[i] = k
		}
		if !complete {
			continue
		}

		key := strings.Join(parts, keySeparator)
		g, ok := index[key]
		if !ok {
			g = len(t.keys)
			index[key] = g
			t.keys = append(t.keys, key)
			for _, m := range measures {
				t.sums[m] = append(t.sums[m], 0)
			}
		}
		for _, m := range measures {
			if v, ok := dataset.ToFloat(r[m]); ok {
				t.sums[m][g] += v
			}
		}
	}
	return t
}

// groups returns the number of non-empty groups
func (t groupTable) groups() int {
	return len(t.keys)
}

// spread is the normalized entropy of a measure's share across groups:
// 1 when the measure is spread evenly, 0 when one group holds everything.
func (t groupTable) spread(measure string) float64 {
	sums := t.sums[measure]
	if len(sums) < 2 {
		return 0
	}
	var total float64
	for _, s := range sums {
		total += math.Abs(s)
	}
	if total == 0 {
		return 0
	}
	shares := make([]float64, len(sums))
	for i, s := range sums {
		shares[i] = math.Abs(s) / total
	}
	h := stat.Entropy(shares) / math.Log(float64(len(sums)))
	return clamp(h, 0, 1)
}

func clamp(x, lo, hi float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < lo:
		return lo
	case x > hi:
		return hi
	}
	return x
}
