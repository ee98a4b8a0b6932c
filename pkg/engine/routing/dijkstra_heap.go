package routing

import (
	"math"

	"github.com/lintang-b-s/Collectorx/pkg"
	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
)

// HeapDijkstra is Dijkstra driven by a 4-ary heap. The heap breaks rank ties on the lowest
// index, so vertices settle in the same order as the dense scan and distances and
// predecessors are identical.
type HeapDijkstra struct {
	matrix *da.CostMatrix

	dist      []float64
	prev      []da.Index
	visited   []bool
	heapNodes []*da.PriorityQueueNode[da.Index]

	pq *da.MinHeap[da.Index]

	numSettledNodes int
}

func NewHeapDijkstra(matrix *da.CostMatrix) *HeapDijkstra {
	return &HeapDijkstra{
		matrix: matrix,
		pq:     da.NewFourAryHeap[da.Index](),
	}
}

func (us *HeapDijkstra) Preallocate() {
	n := us.matrix.Size()
	us.dist = make([]float64, n)
	us.prev = make([]da.Index, n)
	us.visited = make([]bool, n)
	us.heapNodes = make([]*da.PriorityQueueNode[da.Index], n)
	for v := 0; v < n; v++ {
		us.dist[v] = pkg.INF_WEIGHT
		us.prev[v] = da.INVALID_INDEX
	}
	us.pq.Clear()
	us.numSettledNodes = 0
}

func (us *HeapDijkstra) ShortestPaths(s da.Index) (*ShortestPathResult, error) {
	if err := us.matrix.ValidateIndex(s, "source"); err != nil {
		return nil, err
	}

	us.Preallocate()
	us.dist[s] = 0
	us.heapNodes[s] = da.NewPriorityQueueNode(0, s)
	us.pq.Insert(us.heapNodes[s])

	for !us.pq.IsEmpty() {
		node, _ := us.pq.ExtractMin()
		u := node.GetItem()
		us.visited[u] = true
		us.numSettledNodes++

		us.graphSearchUni(u)
	}

	return newShortestPathResult(s, us.dist, us.prev), nil
}

func (us *HeapDijkstra) graphSearchUni(u da.Index) {
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
		if newDist >= us.dist[v] {
			// newDist is not better, do nothing
			continue
		}

		vAlreadyLabelled := us.heapNodes[v] != nil
		us.dist[v] = newDist
		us.prev[v] = u

		if vAlreadyLabelled {
			_ = us.pq.DecreaseKey(us.heapNodes[v], newDist)
		} else {
			us.heapNodes[v] = da.NewPriorityQueueNode(newDist, v)
			us.pq.Insert(us.heapNodes[v])
		}
	}
}

func (us *HeapDijkstra) GetNumSettledNodes() int {
	return us.numSettledNodes
}
