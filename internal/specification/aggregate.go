package specification

import (
	"fmt"
	"math"
	"strings"

	"goinsight/domain/dataset"
	"goinsight/domain/insight"

	"github.com/montanaflynn/stats"
)

// Reducer collapses the values of one measure within one group
type Reducer func(values []float64) (float64, error)

var reducers = map[string]Reducer{
	"sum":    func(v []float64) (float64, error) { return stats.Sum(v) },
	"mean":   func(v []float64) (float64, error) { return stats.Mean(v) },
	"median": func(v []float64) (float64, error) { return stats.Median(v) },
	"max":    func(v []float64) (float64, error) { return stats.Max(v) },
	"min":    func(v []float64) (float64, error) { return stats.Min(v) },
	"count":  func(v []float64) (float64, error) { return float64(len(v)), nil },
}

// ReducerFor returns the reduction named by an aggregator
func ReducerFor(aggregator string) (Reducer, error) {
	r, ok := reducers[aggregator]
	if !ok {
		return nil, fmt.Errorf("unsupported aggregator %q (want one of %s)", aggregator, strings.Join(insight.Aggregators, ", "))
	}
	return r, nil
}

// Aggregate groups ds by dims and reduces every measure per group.
// Rows come out in order of first appearance of their group. Records missing a
// dimension are skipped; a group whose measure has no numeric values gets nil.
// With no dimensions the whole dataset is one group.
func Aggregate(ds *dataset.Dataset, dims, measures []string, aggregator string) ([]dataset.Record, error) {
	reduce, err := ReducerFor(aggregator)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		keys   dataset.Record
		values map[string][]float64
	}
	index := make(map[string]*bucket)
	var order []*bucket

	for _, r := range ds.Records {
		parts := make([]string, 0, len(dims))
		complete := true
		for _, d := range dims {
			k, ok := dataset.ValueKey(r[d])
			if !ok {
				complete = false
				break
			}
			parts = append(parts, k)
		}
		if !complete {
			continue
		}

		key := strings.Join(parts, "\x1f")
		b, ok := index[key]
		if !ok {
			b = &bucket{keys: make(dataset.Record, len(dims)), values: make(map[string][]float64, len(measures))}
			for _, d := range dims {
				b.keys[d] = r[d]
			}
			index[key] = b
			order = append(order, b)
		}
		for _, m := range measures {
			if v, ok := dataset.ToFloat(r[m]); ok && !math.IsInf(v, 0) {
				b.values[m] = append(b.values[m], v)
			}
		}
	}

	rows := make([]dataset.Record, 0, len(order))
	for _, b := range order {
		row := make(dataset.Record, len(dims)+len(measures))
		for k, v := range b.keys {
			row[k] = v
		}
		for _, m := range measures {
			vals := b.values[m]
			if len(vals) == 0 && aggregator != "count" {
				row[m] = nil
				continue
			}
			x, err := reduce(vals)
			if err != nil {
				return nil, fmt.Errorf("reduce %s with %s: %w", m, aggregator, err)
			}
			row[m] = x
		}
		rows = append(rows, row)
	}
	return rows, nil
}
