package tour

import (
	"github.com/lintang-b-s/Collectorx/pkg"
	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
	"github.com/lintang-b-s/Collectorx/pkg/engine/routing"
	"github.com/lintang-b-s/Collectorx/pkg/util"
)

// GreedyBuilder extends a tour with the nearest unvisited node, measured by shortest-path
// distance from the current node. Shortest paths are recomputed at every step since the
// source changes.
type GreedyBuilder struct {
	matrix      *da.CostMatrix
	engine      routing.ShortestPathEngine
	unreachable pkg.UnreachablePolicy

	numUnreachable int
}

type BuilderOption func(*GreedyBuilder)

func WithEngineFactory(factory routing.EngineFactory) BuilderOption {
	return func(b *GreedyBuilder) {
		b.engine = factory(b.matrix)
	}
}

func WithUnreachablePolicy(policy pkg.UnreachablePolicy) BuilderOption {
	return func(b *GreedyBuilder) {
		b.unreachable = policy
	}
}

func NewGreedyBuilder(matrix *da.CostMatrix, opts ...BuilderOption) *GreedyBuilder {
	b := &GreedyBuilder{
		matrix:      matrix,
		unreachable: pkg.UNREACHABLE_ALLOW,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.engine == nil {
		b.engine = routing.NewDijkstra(matrix)
	}
	return b
}

// BuildGreedyTour builds a nearest-unvisited tour with the dense shortest path engine and
// the allow policy for unreachable nodes.
func BuildGreedyTour(matrix *da.CostMatrix, start da.Index, mustReturn bool) (da.Tour, error) {
	return NewGreedyBuilder(matrix).Build(start, mustReturn)
}

// Build returns every node exactly once starting at start, plus start again when mustReturn.
// With n == 1 the tour is [start] (or [start, start]).
func (b *GreedyBuilder) Build(start da.Index, mustReturn bool) (da.Tour, error) {
	if err := b.matrix.ValidateIndex(start, "start"); err != nil {
		return nil, err
	}
	b.numUnreachable = 0

	n := b.matrix.Size()
	tour := da.NewTour(n+1, start)
	unvisited := da.NewVisitedSet(n, start)

	current := start
	for !unvisited.IsEmpty() {
		sp, err := b.engine.ShortestPaths(current)
		if err != nil {
			return nil, err
		}

		next, nextDist := b.nearestUnvisited(sp, unvisited)
		if !sp.IsReachable(next) {
			if b.unreachable == pkg.UNREACHABLE_FAIL {
				return nil, util.WrapErrorf(util.ErrUnreachable, util.ErrBadParamInput,
					"node %d is unreachable from node %d (distance %v)", next, current, nextDist)
			}
			b.numUnreachable++
		}

		tour = append(tour, next)
		unvisited.Remove(next)
		current = next
	}

	if mustReturn {
		tour = append(tour, start)
	}
	return tour, nil
}

// nearestUnvisited picks the pending node with the smallest distance, lowest index on ties.
// When every pending node is unreachable the lowest-index one is returned.
func (b *GreedyBuilder) nearestUnvisited(sp *routing.ShortestPathResult, unvisited *da.VisitedSet) (da.Index, float64) {
	best, bestDist := da.INVALID_INDEX, pkg.INF_WEIGHT
	unvisited.ForEach(func(v da.Index) {
		d := sp.Dist(v)
		if best == da.INVALID_INDEX || d < bestDist {
			best, bestDist = v, d
		}
	})
	return best, bestDist
}

// GetNumUnreachable reports how many nodes the last Build appended despite an infinite distance.
func (b *GreedyBuilder) GetNumUnreachable() int {
	return b.numUnreachable
}
