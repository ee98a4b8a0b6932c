package util

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapErrorf(t *testing.T) {
	err := WrapErrorf(ErrInvalidInput, ErrBadParamInput, "start %d is out of range", 7)
	assert.EqualError(t, err, "start 7 is out of range")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrBadParamInput)
	assert.Equal(t, ErrBadParamInput, ErrorCode(err))

	wrapped := fmt.Errorf("planning: %w", err)
	assert.ErrorIs(t, wrapped, ErrInvalidInput)
	assert.Equal(t, ErrBadParamInput, ErrorCode(wrapped))

	assert.Equal(t, ErrInternalServerError, ErrorCode(errors.New("plain")))
}

func TestReverseInPlace(t *testing.T) {
	testCases := []struct {
		name string
		arr  []int
		i, k int
		want []int
	}{
		{name: "inner segment", arr: []int{0, 1, 2, 3, 4, 0}, i: 1, k: 4, want: []int{0, 4, 3, 2, 1, 0}},
		{name: "two elements", arr: []int{0, 1, 2, 3}, i: 1, k: 2, want: []int{0, 2, 1, 3}},
		{name: "single element", arr: []int{0, 1, 2}, i: 1, k: 1, want: []int{0, 1, 2}},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			ReverseInPlace(tt.arr, tt.i, tt.k)
			assert.Equal(t, tt.want, tt.arr)
		})
	}

	assert.Equal(t, []int{3, 2, 1}, ReverseG([]int{1, 2, 3}))
}

func TestStopConcurrentOperation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.False(t, StopConcurrentOperation(ctx))
	cancel()
	assert.True(t, StopConcurrentOperation(ctx))
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 12.980708, RoundFloat(12.9807081234, 6))
}
