package profiling

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution is the empirical value distribution of one column
type Distribution struct {
	Counts map[string]int
	Total  int
}

// NewDistribution counts present values
func NewDistribution(keys []string, present []bool) Distribution {
	d := Distribution{Counts: make(map[string]int)}
	for i, k := range keys {
		if !present[i] {
			continue
		}
		d.Counts[k]++
		d.Total++
	}
	return d
}

// Distinct returns the number of distinct observed values
func (d Distribution) Distinct() int {
	return len(d.Counts)
}

// Probabilities returns p_i in lexical key order so floating sums are reproducible
func (d Distribution) Probabilities() []float64 {
	if d.Total == 0 {
		return nil
	}
	keys := d.sortedKeys()
	p := make([]float64, len(keys))
	for i, k := range keys {
		p[i] = float64(d.Counts[k]) / float64(d.Total)
	}
	return p
}

// Ranked returns keys by descending frequency, ties by key
func (d Distribution) Ranked() []string {
	keys := d.sortedKeys()
	sort.SliceStable(keys, func(i, j int) bool {
		return d.Counts[keys[i]] > d.Counts[keys[j]]
	})
	return keys
}

func (d Distribution) sortedKeys() []string {
	keys := make([]string, 0, len(d.Counts))
	for k := range d.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entropy returns the base-2 Shannon entropy and its upper bound log2(distinct).
// An empty distribution has entropy 0 and max entropy 0.
func (d Distribution) Entropy() (entropy, maxEntropy float64) {
	distinct := d.Distinct()
	if distinct == 0 {
		return 0, 0
	}
	maxEntropy = math.Log2(float64(distinct))
	entropy = stat.Entropy(d.Probabilities()) / math.Ln2

	// Rounding can push a uniform distribution a hair past its bound
	if entropy > maxEntropy {
		entropy = maxEntropy
	}
	if entropy < 0 {
		entropy = 0
	}
	return entropy, maxEntropy
}
