package session

import (
	"context"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/domain/run"
)

// maxTrackedRuns bounds how many finished runs stay awaitable
const maxTrackedRuns = 32

// plan describes the inputs of one background run. Stages whose output is
// already present (summaries, upstream subspaces) are skipped.
type plan struct {
	kind      run.Kind
	origin    *dataset.Dataset
	working   *dataset.Dataset
	summaries *insight.SummarySet
	upstream  []insight.Subspace
	groups    int
}

// job tracks one background computation
type job struct {
	token    core.RunToken
	manifest run.Manifest
	cancel   context.CancelFunc
	done     chan struct{}
	finished bool
	err      error
	result   Snapshot
}

type outcome struct {
	origin     *dataset.Dataset
	working    *dataset.Dataset
	summaries  insight.SummarySet
	subspaces  []insight.Subspace
	viewSpaces []insight.ViewSpace
	groups     int
}

// execute runs the pipeline stages a plan needs. stage is called between stages
// so the session can expose Profiling → Clustering.
func (s *Session) execute(ctx context.Context, p plan, stage func(State)) (*outcome, error) {
	out := &outcome{origin: p.origin, working: p.working, groups: p.groups}

	switch {
	case p.summaries != nil:
		out.summaries = *p.summaries
	case p.origin != nil:
		profile, err := s.profiler.ProfileAll(ctx, p.origin)
		if err != nil {
			return nil, err
		}
		out.summaries = profile.Summaries
		out.working = profile.Working
	}

	stage(StateClustering)

	if p.upstream != nil {
		out.subspaces = p.upstream
	} else {
		subspaces, err := s.scorer.Score(ctx, out.working, out.summaries)
		if err != nil {
			return nil, err
		}
		out.subspaces = subspaces
	}

	viewSpaces, err := s.clusterer.Cluster(ctx, p.groups, out.subspaces)
	if err != nil {
		return nil, err
	}
	out.viewSpaces = viewSpaces
	return out, nil
}

// fingerprint identifies the inputs of p
func (p plan) fingerprint() run.Fingerprint {
	var datasetHash, subspaceHash core.Hash
	if p.origin != nil {
		datasetHash = p.origin.Fingerprint()
	}
	if p.upstream != nil {
		keys := make([]string, len(p.upstream))
		for i, sub := range p.upstream {
			keys[i] = sub.Key()
		}
		subspaceHash = core.ComputeSetHash(keys)
	}
	return run.NewFingerprint(datasetHash, subspaceHash, p.groups)
}
