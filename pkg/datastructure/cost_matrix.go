package datastructure

import (
	"math"

	"github.com/lintang-b-s/Collectorx/pkg"
	"github.com/lintang-b-s/Collectorx/pkg/util"
)

// Index identifies a row/column of a CostMatrix. Index 0 is the depot by convention.
type Index int

const (
	INVALID_INDEX Index = -1
)

// CostMatrix is a dense n x n travel cost table (time or distance), not necessarily symmetric.
// Unreachable pairs hold pkg.INF_WEIGHT. It is never mutated after construction.
type CostMatrix struct {
	n       int
	weights []float64 // row-major, weights[u*n+v] = cost(u -> v)
}

// NewCostMatrix copies rows into a CostMatrix. Rows must form a square table of
// non-negative, non-NaN values; +Inf marks an unreachable pair.
func NewCostMatrix(rows [][]float64) (*CostMatrix, error) {
	n := len(rows)
	weights := make([]float64, n*n)
	for u, row := range rows {
		if len(row) != n {
			return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput,
				"cost matrix row %d has %d columns, want %d", u, len(row), n)
		}
		for v, w := range row {
			if math.IsNaN(w) {
				return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput,
					"cost matrix entry (%d,%d) is NaN", u, v)
			}
			if w < 0 {
				return nil, util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput,
					"cost matrix entry (%d,%d) is negative: %f", u, v, w)
			}
			weights[u*n+v] = w
		}
	}
	return &CostMatrix{n: n, weights: weights}, nil
}

// NewCostMatrixNullable is NewCostMatrix for decoded JSON where null means unreachable.
func NewCostMatrixNullable(rows [][]*float64) (*CostMatrix, error) {
	dense := make([][]float64, len(rows))
	for u, row := range rows {
		dense[u] = make([]float64, len(row))
		for v, w := range row {
			if w == nil {
				dense[u][v] = pkg.INF_WEIGHT
				continue
			}
			dense[u][v] = *w
		}
	}
	return NewCostMatrix(dense)
}

func (m *CostMatrix) Size() int {
	return m.n
}

// Get returns cost(u -> v). Callers are expected to pass indices in [0, Size()).
func (m *CostMatrix) Get(u, v Index) float64 {
	return m.weights[int(u)*m.n+int(v)]
}

func (m *CostMatrix) IsReachable(u, v Index) bool {
	return !math.IsInf(m.Get(u, v), 1)
}

func (m *CostMatrix) Contains(u Index) bool {
	return u >= 0 && int(u) < m.n
}

// IsSymmetric reports whether cost(u -> v) == cost(v -> u) within EPS for every pair.
func (m *CostMatrix) IsSymmetric() bool {
	for u := 0; u < m.n; u++ {
		for v := u + 1; v < m.n; v++ {
			a, b := m.weights[u*m.n+v], m.weights[v*m.n+u]
			if math.IsInf(a, 1) || math.IsInf(b, 1) {
				if a != b {
					return false
				}
				continue
			}
			if !Eq(a, b) {
				return false
			}
		}
	}
	return true
}

// Rows returns a copy of the matrix as nested slices.
func (m *CostMatrix) Rows() [][]float64 {
	rows := make([][]float64, m.n)
	for u := 0; u < m.n; u++ {
		rows[u] = make([]float64, m.n)
		copy(rows[u], m.weights[u*m.n:(u+1)*m.n])
	}
	return rows
}

// ValidateIndex returns an InvalidInput error when u is outside the matrix.
func (m *CostMatrix) ValidateIndex(u Index, name string) error {
	if m.n == 0 {
		return util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput, "cost matrix is empty")
	}
	if !m.Contains(u) {
		return util.WrapErrorf(util.ErrInvalidInput, util.ErrBadParamInput,
			"%s %d is out of range [0, %d)", name, u, m.n)
	}
	return nil
}
