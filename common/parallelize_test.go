package common

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelizeCoversAllIterations(t *testing.T) {
	for _, n := range []int{0, 1, 7, 64, 1001} {
		visited := make([]int32, n)
		Parallelize(n, func(start, stop int) {
			for i := start; i < stop; i++ {
				atomic.AddInt32(&visited[i], 1)
			}
		})
		for i := 0; i < n; i++ {
			assert.EqualValues(t, 1, visited[i], "iteration %d of %d", i, n)
		}
	}
}

func TestParallelizeMaxCpus(t *testing.T) {
	var count int64
	Parallelize(100, func(start, stop int) {
		atomic.AddInt64(&count, int64(stop-start))
	}, 3)
	assert.EqualValues(t, 100, count)
}

func TestNextPowerOfTwo(t *testing.T) {
	assert.Equal(t, 1, NextPowerOfTwo(1))
	assert.Equal(t, 2, NextPowerOfTwo(2))
	assert.Equal(t, 4, NextPowerOfTwo(3))
	assert.Equal(t, 8, NextPowerOfTwo(6))
	assert.Equal(t, 8, NextPowerOfTwo(8))
}
