package routing

import (
	"math"

	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
	"github.com/lintang-b-s/Collectorx/pkg/util"
)

// ShortestPathResult holds, for one source, the shortest distance to every node and the
// predecessor on that path (da.INVALID_INDEX for the source and unreachable nodes).
type ShortestPathResult struct {
	source da.Index
	dist   []float64
	prev   []da.Index
}

func newShortestPathResult(source da.Index, dist []float64, prev []da.Index) *ShortestPathResult {
	return &ShortestPathResult{source: source, dist: dist, prev: prev}
}

func (r *ShortestPathResult) GetSource() da.Index {
	return r.source
}

// Dist returns the shortest distance from the source to v, +Inf if unreachable.
func (r *ShortestPathResult) Dist(v da.Index) float64 {
	return r.dist[v]
}

func (r *ShortestPathResult) Prev(v da.Index) da.Index {
	return r.prev[v]
}

func (r *ShortestPathResult) IsReachable(v da.Index) bool {
	return !math.IsInf(r.dist[v], 1)
}

func (r *ShortestPathResult) Distances() []float64 {
	out := make([]float64, len(r.dist))
	copy(out, r.dist)
	return out
}

func (r *ShortestPathResult) Predecessors() []da.Index {
	out := make([]da.Index, len(r.prev))
	copy(out, r.prev)
	return out
}

// PathTo rebuilds source -> ... -> t from the predecessor chain.
func (r *ShortestPathResult) PathTo(t da.Index) ([]da.Index, error) {
	if t < 0 || int(t) >= len(r.dist) {
		return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput,
			"target %d is out of range [0, %d)", t, len(r.dist))
	}
	if !r.IsReachable(t) {
		return nil, util.WrapErrorf(util.ErrUnreachable, util.ErrNotFound,
			"node %d is unreachable from %d", t, r.source)
	}

	path := make([]da.Index, 0)
	for cur := t; cur != da.INVALID_INDEX; cur = r.prev[cur] {
		path = append(path, cur)
	}
	return util.ReverseG(path), nil
}
