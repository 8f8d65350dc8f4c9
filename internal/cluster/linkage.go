package cluster

import (
	"context"
)

// linkage keeps the summed pairwise similarity between every two groups so that
// average linkage after a merge is a row addition instead of a rescan
type linkage struct {
	sums  [][]float64
	sizes []int
}

func newLinkage(ctx context.Context, groups []*group) (*linkage, error) {
	points := make([][]point, len(groups))
	for i, g := range groups {
		points[i] = make([]point, len(g.members))
		for m, s := range g.members {
			points[i][m] = newPoint(s)
		}
	}

	l := &linkage{
		sums:  make([][]float64, len(groups)),
		sizes: make([]int, len(groups)),
	}
	for i := range groups {
		l.sums[i] = make([]float64, len(groups))
		l.sizes[i] = len(groups[i].members)
	}
	for i := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < len(groups); j++ {
			var sum float64
			for _, p := range points[i] {
				for _, q := range points[j] {
					sum += p.similarity(q)
				}
			}
			l.sums[i][j] = sum
			l.sums[j][i] = sum
		}
	}
	return l, nil
}

func (l *linkage) average(i, j int) float64 {
	return l.sums[i][j] / float64(l.sizes[i]*l.sizes[j])
}

// closest finds the pair with the highest average similarity; the first pair wins ties
func (l *linkage) closest(groups []*group) (int, int, float64) {
	bi, bj, best := 0, 1, -1.0
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			if sim := l.average(i, j); sim > best {
				bi, bj, best = i, j, sim
			}
		}
	}
	return bi, bj, best
}

// merge folds j into i and removes row and column j, mirroring merge on the group slice
func (l *linkage) merge(i, j int) {
	for k := range l.sums {
		l.sums[i][k] += l.sums[j][k]
		l.sums[k][i] = l.sums[i][k]
	}
	l.sums[i][i] = 0
	l.sizes[i] += l.sizes[j]

	l.sums = append(l.sums[:j], l.sums[j+1:]...)
	for k := range l.sums {
		l.sums[k] = append(l.sums[k][:j], l.sums[k][j+1:]...)
	}
	l.sizes = append(l.sizes[:j], l.sizes[j+1:]...)
}
