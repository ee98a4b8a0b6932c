package tour

import (
	"time"

	da "github.com/lintang-b-s/Collectorx/pkg/datastructure"
	"github.com/lintang-b-s/Collectorx/pkg/util"
)

type StopReason uint8

const (
	STOP_LOCAL_OPTIMUM StopReason = iota
	STOP_TOO_SHORT
	STOP_PASS_LIMIT
	STOP_TIME_LIMIT
)

func (r StopReason) String() string {
	switch r {
	case STOP_TOO_SHORT:
		return "too_short"
	case STOP_PASS_LIMIT:
		return "pass_limit"
	case STOP_TIME_LIMIT:
		return "time_limit"
	default:
		return "local_optimum"
	}
}

// ImproveStats describes one 2-opt run.
type ImproveStats struct {
	Passes        int
	AcceptedMoves int
	Reason        StopReason
}

// Truncated reports whether a pass or time cap ended the search before a local optimum.
func (s ImproveStats) Truncated() bool {
	return s.Reason == STOP_PASS_LIMIT || s.Reason == STOP_TIME_LIMIT
}

// TwoOptImprover refines a tour by segment reversal until a full pass accepts no move.
// tour[0] and tour[len-1] never move.
type TwoOptImprover struct {
	matrix *da.CostMatrix

	maxPasses int           // 0 = unlimited
	timeLimit time.Duration // 0 = none
	directed  bool

	now func() time.Time
}

type ImproverOption func(*TwoOptImprover)

// WithMaxPasses caps the number of full passes.
func WithMaxPasses(maxPasses int) ImproverOption {
	return func(im *TwoOptImprover) {
		im.maxPasses = maxPasses
	}
}

// WithTimeLimit caps wall-clock time; checked after every pass.
func WithTimeLimit(limit time.Duration) ImproverOption {
	return func(im *TwoOptImprover) {
		im.timeLimit = limit
	}
}

// WithDirectedDelta also prices the reversed inner segment, which matters when the
// matrix is asymmetric.
func WithDirectedDelta(directed bool) ImproverOption {
	return func(im *TwoOptImprover) {
		im.directed = directed
	}
}

func withClock(now func() time.Time) ImproverOption {
	return func(im *TwoOptImprover) {
		im.now = now
	}
}

func NewTwoOptImprover(matrix *da.CostMatrix, opts ...ImproverOption) *TwoOptImprover {
	im := &TwoOptImprover{
		matrix: matrix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImproveTour runs uncapped 2-opt with the classic two-edge delta.
func ImproveTour(matrix *da.CostMatrix, tour da.Tour) (da.Tour, error) {
	improved, _, err := NewTwoOptImprover(matrix).Improve(tour)
	return improved, err
}

// Improve returns a refined copy of tour. Tours shorter than 4 are returned unchanged.
func (im *TwoOptImprover) Improve(tour da.Tour) (da.Tour, ImproveStats, error) {
	stats := ImproveStats{}
	if err := tour.ValidateAgainst(im.matrix); err != nil {
		return nil, stats, err
	}

	cur := tour.Clone()
	n := len(cur)
	if n < 4 {
		stats.Reason = STOP_TOO_SHORT
		return cur, stats, nil
	}

	var deadline time.Time
	if im.timeLimit > 0 {
		deadline = im.now().Add(im.timeLimit)
	}

	improved := true
	for improved {
		if im.maxPasses > 0 && stats.Passes >= im.maxPasses {
			stats.Reason = STOP_PASS_LIMIT
			return cur, stats, nil
		}
		if im.timeLimit > 0 && im.now().After(deadline) {
			stats.Reason = STOP_TIME_LIMIT
			return cur, stats, nil
		}

		improved = false
		stats.Passes++

		// 1 <= i < k <= n-2: the first and last positions stay fixed.
		for i := 1; i < n-2; i++ {
			for k := i + 1; k < n-1; k++ {
				current, swapped := im.moveCost(cur, i, k)

				if da.Lt(swapped, current) {
					// later comparisons in this pass see the updated tour
					util.ReverseInPlace(cur, i, k)
					stats.AcceptedMoves++
					improved = true
				}
			}
		}
	}

	stats.Reason = STOP_LOCAL_OPTIMUM
	return cur, stats, nil
}

// moveCost prices reversing cur[i..k]: edges (a,b),(c,d) become (a,c),(b,d).
func (im *TwoOptImprover) moveCost(cur da.Tour, i, k int) (float64, float64) {
	a, b, c, d := cur[i-1], cur[i], cur[k], cur[k+1]

	current := im.matrix.Get(a, b) + im.matrix.Get(c, d)
	swapped := im.matrix.Get(a, c) + im.matrix.Get(b, d)
	if !im.directed {
		return current, swapped
	}

	for j := i; j < k; j++ {
		current += im.matrix.Get(cur[j], cur[j+1])
		swapped += im.matrix.Get(cur[j+1], cur[j])
	}
	return current, swapped
}
