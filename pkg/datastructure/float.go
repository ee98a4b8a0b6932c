package datastructure

import (
	"math"
)

const (
	// EPS is the tolerance of every approximate comparison below. 2-opt accepts a move only
	// when Lt(swapped, current), which stops oscillation on floating-point ties.
	EPS = 1e-6
)

// equal operator
func Eq(a, b float64) bool {
	return math.Abs(a-b) <= EPS
}

// less than operator
func Lt(a, b float64) bool {
	return a+EPS < b
}

// greater than or equal than operator
func Ge(a, b float64) bool {
	return Le(b, a)
}

func Gt(a, b float64) bool {
	return Lt(b, a)
}

// less than or equal operator
func Le(a, b float64) bool {
	return a <= b+EPS
}
