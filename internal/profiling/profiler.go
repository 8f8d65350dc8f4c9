package profiling

import (
	"context"
	"fmt"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal"
	"goinsight/internal/errors"

	"golang.org/x/sync/errgroup"
)

// FieldProfiler computes per-field entropy summaries
type FieldProfiler struct {
	workers int
	grouper *Grouper
	logger  *internal.Logger
}

// NewFieldProfiler creates a profiler that summarizes up to workers fields concurrently
func NewFieldProfiler(workers int, grouper *Grouper, logger *internal.Logger) *FieldProfiler {
	if workers < 1 {
		workers = 1
	}
	return &FieldProfiler{
		workers: workers,
		grouper: grouper,
		logger:  logger.Named("profiler"),
	}
}

// Profile summarizes each field of ds at the given granularity, in input order.
// Null cells are excluded from the distribution.
func (p *FieldProfiler) Profile(ctx context.Context, ds *dataset.Dataset, fields []dataset.Field, granularity insight.Granularity) ([]insight.FieldSummary, error) {
	if ds.Len() == 0 {
		return nil, errors.Profiling("cannot profile an empty dataset", core.ErrEmptyDataset)
	}
	if len(fields) == 0 {
		// a dataset with no groupable fields has an empty grouped variant
		return nil, nil
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return nil, errors.Profiling("cannot profile "+ds.Name, fmt.Errorf("%w: %s", core.ErrDuplicateName, f.Name))
		}
		seen[f.Name] = true
		if !ds.HasField(f.Name) {
			return nil, errors.Profiling("cannot profile "+ds.Name, fmt.Errorf("%w: %s", core.ErrFieldMissing, f.Name))
		}
	}

	summaries := make([]insight.FieldSummary, len(fields))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, f := range fields {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summaries[i] = summarize(ds, f, granularity)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Profiling("profiling interrupted", err)
	}

	p.logger.Debug("profiled %d %s fields of %s", len(summaries), granularity, ds.Name)
	return summaries, nil
}

// ProfileAll summarizes the origin fields and the grouped variant of ds
func (p *FieldProfiler) ProfileAll(ctx context.Context, ds *dataset.Dataset) (*insight.ProfileResult, error) {
	if ds == nil || len(ds.Fields) == 0 {
		return nil, errors.Profiling("nothing to profile", core.ErrNoFields)
	}

	origin, err := p.Profile(ctx, ds, ds.Fields, insight.GranularityOrigin)
	if err != nil {
		return nil, err
	}

	variant := p.grouper.Group(ds)
	grouped, err := p.Profile(ctx, variant.Only(ds.Name, ds.Len()), variant.Fields, insight.GranularityGrouped)
	if err != nil {
		return nil, err
	}
	for i := range grouped {
		grouped[i].SourceField = variant.Sources[grouped[i].FieldName]
	}

	p.logger.Info("profiled %s: %d origin and %d grouped fields over %d records",
		ds.Name, len(origin), len(grouped), ds.Len())

	return &insight.ProfileResult{
		Summaries: insight.SummarySet{Origin: origin, Grouped: grouped},
		Working:   variant.Apply(ds),
	}, nil
}

func summarize(ds *dataset.Dataset, f dataset.Field, granularity insight.Granularity) insight.FieldSummary {
	dist := NewDistribution(ds.Column(f.Name))
	h, maxH := dist.Entropy()
	return insight.FieldSummary{
		FieldName:   f.Name,
		Entropy:     h,
		MaxEntropy:  maxH,
		Type:        f.Type,
		Distinct:    dist.Distinct(),
		Granularity: granularity,
	}
}
