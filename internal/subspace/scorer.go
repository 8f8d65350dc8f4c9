package subspace

import (
	"context"
	"sort"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal"
	"goinsight/internal/errors"

	"golang.org/x/sync/errgroup"
)

// SubspaceScorer enumerates (dimensions, measures) groupings and scores each one
type SubspaceScorer struct {
	maxDimensions int
	maxMeasures   int
	workers       int
	logger        *internal.Logger
}

// NewSubspaceScorer creates a scorer bounded to maxDimensions and maxMeasures per subspace
func NewSubspaceScorer(maxDimensions, maxMeasures, workers int, logger *internal.Logger) *SubspaceScorer {
	if workers < 1 {
		workers = 1
	}
	return &SubspaceScorer{
		maxDimensions: maxDimensions,
		maxMeasures:   maxMeasures,
		workers:       workers,
		logger:        logger.Named("scorer"),
	}
}

// Score returns every candidate subspace of ds ordered by descending score.
// Ties are broken by dimension key, then measure key, so the order is total.
// Dimensions come from both granularities; measures only from origin fields.
func (s *SubspaceScorer) Score(ctx context.Context, ds *dataset.Dataset, summaries insight.SummarySet) ([]insight.Subspace, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.Profiling("cannot score subspaces", core.ErrEmptyDataset)
	}

	byName := make(map[string]insight.FieldSummary)
	var dims, measures []string
	for _, fs := range summaries.All() {
		if _, dup := byName[fs.FieldName]; dup {
			continue
		}
		byName[fs.FieldName] = fs
		switch {
		case fs.Type.IsDimension():
			dims = append(dims, fs.FieldName)
		case fs.Type.IsMeasure() && fs.Granularity == insight.GranularityOrigin:
			measures = append(measures, fs.FieldName)
		}
	}
	if len(dims) == 0 || len(measures) == 0 {
		s.logger.Warn("%s has %d dimensions and %d measures; no subspace to score", ds.Name, len(dims), len(measures))
		return []insight.Subspace{}, nil
	}

	dimCombos := make([][]string, 0)
	for _, combo := range combinations(dims, s.maxDimensions) {
		if distinctSources(combo, byName) {
			dimCombos = append(dimCombos, combo)
		}
	}

	results := make([][]insight.Subspace, len(dimCombos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, combo := range dimCombos {
		i, combo := i, combo
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.scoreDimensions(ds, combo, usableMeasures(combo, measures, byName), byName)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Profiling("subspace scoring interrupted", err)
	}

	var out []insight.Subspace
	for _, r := range results {
		out = append(out, r...)
	}
	Sort(out)

	s.logger.Info("scored %d subspaces over %d dimension sets of %s", len(out), len(dimCombos), ds.Name)
	return out, nil
}

func (s *SubspaceScorer) scoreDimensions(ds *dataset.Dataset, dims, measures []string, byName map[string]insight.FieldSummary) []insight.Subspace {
	if len(measures) == 0 {
		return nil
	}
	table := buildGroupTable(ds, dims, measures)

	var dimInfo float64
	for _, d := range dims {
		dimInfo += byName[d].NormalizedEntropy()
	}
	dimInfo /= float64(len(dims))

	combos := combinations(measures, s.maxMeasures)
	out := make([]insight.Subspace, 0, len(combos))
	for _, ms := range combos {
		matrix := correlationMatrix(table, ms)
		values := make([]insight.Measure, len(ms))
		for i, m := range ms {
			values[i] = insight.Measure{Name: m, Value: table.spread(m)}
		}
		out = append(out, insight.Subspace{
			Dimensions:        append([]string(nil), dims...),
			Measures:          values,
			CorrelationMatrix: matrix,
			Score:             Score(dimInfo, CorrelationStrength(matrix)),
		})
	}
	return out
}

// Score combines how informative the grouping is with how strongly its measures move together
func Score(dimInfo, correlation float64) float64 {
	return dimInfo * (1 + correlation) / 2
}

// Sort orders subspaces by descending score, then dimension key, then measure key
func Sort(subspaces []insight.Subspace) {
	sort.SliceStable(subspaces, func(i, j int) bool {
		a, b := subspaces[i], subspaces[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if ak, bk := a.DimensionKey(), b.DimensionKey(); ak != bk {
			return ak < bk
		}
		return core.SetKey(a.MeasureNames()) < core.SetKey(b.MeasureNames())
	})
}

// distinctSources rejects combinations that pair a field with its own grouped variant
func distinctSources(dims []string, byName map[string]insight.FieldSummary) bool {
	seen := make(map[string]bool, len(dims))
	for _, d := range dims {
		src := sourceOf(byName[d])
		if seen[src] {
			return false
		}
		seen[src] = true
	}
	return true
}

// usableMeasures drops measures whose binned variant is already one of the dimensions
func usableMeasures(dims, measures []string, byName map[string]insight.FieldSummary) []string {
	binned := make(map[string]bool, len(dims))
	for _, d := range dims {
		binned[sourceOf(byName[d])] = true
	}
	out := make([]string, 0, len(measures))
	for _, m := range measures {
		if !binned[m] {
			out = append(out, m)
		}
	}
	return out
}

func sourceOf(fs insight.FieldSummary) string {
	if fs.SourceField != "" {
		return fs.SourceField
	}
	return fs.FieldName
}
