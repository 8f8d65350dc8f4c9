package ports

import (
	"context"

	"goinsight/domain/dataset"
	"goinsight/domain/insight"
)

// ProfilerPort computes origin and grouped field summaries for a dataset
type ProfilerPort interface {
	ProfileAll(ctx context.Context, ds *dataset.Dataset) (*insight.ProfileResult, error)
}

// ScorerPort enumerates and scores candidate subspaces from profiled summaries
type ScorerPort interface {
	Score(ctx context.Context, ds *dataset.Dataset, summaries insight.SummarySet) ([]insight.Subspace, error)
}

// ClustererPort reduces scored subspaces to at most maxGroupNumber view spaces
type ClustererPort interface {
	Cluster(ctx context.Context, maxGroupNumber int, subspaces []insight.Subspace) ([]insight.ViewSpace, error)
}

// SynthesizerPort turns one view space into a chart specification.
// An empty schema is a valid outcome and is not reported as an error.
type SynthesizerPort interface {
	Synthesize(ds *dataset.Dataset, summaries insight.SummarySet, space insight.ViewSpace) insight.Synthesis
}
