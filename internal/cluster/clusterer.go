package cluster

import (
	"context"
	"fmt"
	"sort"

	"goinsight/domain/core"
	"goinsight/domain/insight"
	"goinsight/internal"
	"goinsight/internal/errors"
	"goinsight/internal/subspace"
)

// ViewSpaceClusterer groups scored subspaces into ranked view spaces
type ViewSpaceClusterer struct {
	mergeThreshold float64
	logger         *internal.Logger
}

// NewViewSpaceClusterer creates a clusterer. Clusters whose average similarity reaches
// mergeThreshold are merged even when the cluster budget is already met.
func NewViewSpaceClusterer(mergeThreshold float64, logger *internal.Logger) *ViewSpaceClusterer {
	return &ViewSpaceClusterer{
		mergeThreshold: mergeThreshold,
		logger:         logger.Named("clusterer"),
	}
}

type group struct {
	members []insight.Subspace
}

func (g *group) representative() insight.Subspace {
	return g.members[0]
}

// Cluster partitions subspaces into at most maxGroupNumber clusters.
// Subspaces sharing a dimension set always share a cluster. Each cluster is
// represented by its highest-scoring member and clusters are returned by
// descending representative score. The input slice is not modified.
func (c *ViewSpaceClusterer) Cluster(ctx context.Context, maxGroupNumber int, subspaces []insight.Subspace) ([]insight.ViewSpace, error) {
	if maxGroupNumber < 1 {
		return nil, errors.Clustering("cannot cluster subspaces",
			fmt.Errorf("%w: got %d", core.ErrInvalidGroupNumber, maxGroupNumber))
	}
	if len(subspaces) == 0 {
		return []insight.ViewSpace{}, nil
	}

	sorted := make([]insight.Subspace, len(subspaces))
	for i, s := range subspaces {
		sorted[i] = s.Clone()
	}
	subspace.Sort(sorted)

	groups := dedupe(sorted)
	deduped := len(groups)

	links, err := newLinkage(ctx, groups)
	if err != nil {
		return nil, errors.Clustering("clustering interrupted", err)
	}
	for len(groups) > 1 {
		if err := ctx.Err(); err != nil {
			return nil, errors.Clustering("clustering interrupted", err)
		}
		i, j, sim := links.closest(groups)
		if len(groups) <= maxGroupNumber && sim < c.mergeThreshold {
			break
		}
		c.logger.Trace("merging %s into %s (similarity %.3f)",
			insight.JoinNames(groups[j].representative().Dimensions), insight.JoinNames(groups[i].representative().Dimensions), sim)
		links.merge(i, j)
		groups = merge(groups, i, j)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		ra, rb := groups[a].representative(), groups[b].representative()
		if ra.Score != rb.Score {
			return ra.Score > rb.Score
		}
		return ra.DimensionKey() < rb.DimensionKey()
	})

	out := make([]insight.ViewSpace, len(groups))
	for i, g := range groups {
		vs := insight.ViewSpaceFromSubspace(g.representative())
		vs.Members = make([]string, len(g.members))
		for m, s := range g.members {
			vs.Members[m] = s.Key()
		}
		out[i] = vs
	}

	c.logger.Info("clustered %d subspaces (%d dimension sets) into %d view spaces",
		len(subspaces), deduped, len(out))
	return out, nil
}

// dedupe folds subspaces with the same dimension set into one group, keeping sorted order
func dedupe(sorted []insight.Subspace) []*group {
	index := make(map[string]*group)
	var groups []*group
	for _, s := range sorted {
		key := s.DimensionKey()
		g, ok := index[key]
		if !ok {
			g = &group{}
			index[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, s)
	}
	return groups
}

// merge folds group j into group i and drops j. i < j.
func merge(groups []*group, i, j int) []*group {
	members := make([]insight.Subspace, 0, len(groups[i].members)+len(groups[j].members))
	members = append(members, groups[i].members...)
	members = append(members, groups[j].members...)
	subspace.Sort(members)

	out := make([]*group, 0, len(groups)-1)
	for k, g := range groups {
		switch k {
		case i:
			out = append(out, &group{members: members})
		case j:
		default:
			out = append(out, g)
		}
	}
	return out
}
