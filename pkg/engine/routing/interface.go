package routing

import (
	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
)

// ShortestPathEngine computes single-source shortest paths over one cost matrix.
type ShortestPathEngine interface {
	ShortestPaths(source da.Index) (*ShortestPathResult, error)
}

// EngineFactory binds a ShortestPathEngine to a matrix.
type EngineFactory func(m *da.CostMatrix) ShortestPathEngine

func DenseEngineFactory(m *da.CostMatrix) ShortestPathEngine {
	return NewDijkstra(m)
}

func HeapEngineFactory(m *da.CostMatrix) ShortestPathEngine {
	return NewHeapDijkstra(m)
}

// ShortestPaths runs the dense O(n^2) Dijkstra from source.
func ShortestPaths(m *da.CostMatrix, source da.Index) (*ShortestPathResult, error) {
	return NewDijkstra(m).ShortestPaths(source)
}
