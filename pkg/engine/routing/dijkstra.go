package routing

import (
	"math"

	"github.com/lintang-b-s/Collectorx/pkg"
	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
)

// Dijkstra is the dense O(n^2) single-source shortest path search over a cost matrix.
// Each iteration settles the unvisited node with the smallest label, ties going to the
// lowest index, so results are reproducible.
type Dijkstra struct {
	matrix *da.CostMatrix

	dist    []float64
	prev    []da.Index
	visited []bool

	numSettledNodes int
}

func NewDijkstra(matrix *da.CostMatrix) *Dijkstra {
	return &Dijkstra{
		matrix: matrix,
	}
}

func (us *Dijkstra) Preallocate() {
	n := us.matrix.Size()
	us.dist = make([]float64, n)
	us.prev = make([]da.Index, n)
	us.visited = make([]bool, n)
	for v := 0; v < n; v++ {
		us.dist[v] = pkg.INF_WEIGHT
		us.prev[v] = da.INVALID_INDEX
	}
	us.numSettledNodes = 0
}

// single-source shortest paths, from s to all other vertices
func (us *Dijkstra) ShortestPaths(s da.Index) (*ShortestPathResult, error) {
	if err := us.matrix.ValidateIndex(s, "source"); err != nil {
		return nil, err
	}

	us.Preallocate()
	us.dist[s] = 0

	n := us.matrix.Size()
	for i := 0; i < n; i++ {
		u := us.extractMin()
		if u == da.INVALID_INDEX {
			// remaining vertices are unreachable
			break
		}
		us.visited[u] = true
		us.numSettledNodes++

		us.relax(u)
	}

	return newShortestPathResult(s, us.dist, us.prev), nil
}

// extractMin scans for the unvisited vertex with the smallest finite label.
func (us *Dijkstra) extractMin() da.Index {
	u, best := da.INVALID_INDEX, pkg.INF_WEIGHT
	for v := range us.dist {
		if !us.visited[v] && us.dist[v] < best {
			best = us.dist[v]
			u = da.Index(v)
		}
	}
	return u
}

func (us *Dijkstra) relax(u da.Index) {
	n := us.matrix.Size()
	for v := da.Index(0); v < da.Index(n); v++ {
		if us.visited[v] {
			continue
		}
		w := us.matrix.Get(u, v)
		if math.IsInf(w, 1) {
			continue
		}

		newDist := us.dist[u] + w
		if newDist < us.dist[v] {
			us.dist[v] = newDist
			us.prev[v] = u
		}
	}
}

func (us *Dijkstra) GetNumSettledNodes() int {
	return us.numSettledNodes
}
