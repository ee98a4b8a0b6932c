package concurrent

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunKeepsSubmissionOrder(t *testing.T) {
	payloads := make([]int, 100)
	for i := range payloads {
		payloads[i] = i
	}

	var calls int64
	got := Run(context.Background(), 8, payloads, func(ctx context.Context, x int) int {
		atomic.AddInt64(&calls, 1)
		return x * x
	})

	assert.Len(t, got, len(payloads))
	for i, v := range got {
		assert.Equal(t, i*i, v)
	}
	assert.Equal(t, int64(len(payloads)), calls)
}

func TestRunEdgeCases(t *testing.T) {
	square := func(ctx context.Context, x int) int { return x * x }

	assert.Empty(t, Run(context.Background(), 4, nil, square))
	// fewer than one worker still makes progress
	assert.Equal(t, []int{1, 4}, Run(context.Background(), 0, []int{1, 2}, square))
}
