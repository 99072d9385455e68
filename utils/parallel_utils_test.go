package utils

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	sizes := func(K, Np int) (histo map[int]int) {
		pm := NewPartitionMap(Np, K)
		histo = make(map[int]int)
		for _, p := range pm.Partitions {
			histo[p[1]-p[0]]++
		}
		return
	}
	assert.Equal(t, map[int]int{0: 30, 1: 2}, sizes(2, 32))
	assert.Equal(t, map[int]int{1: 32}, sizes(32, 32))
	assert.Equal(t, map[int]int{8: 32}, sizes(256, 32))
	assert.Equal(t, map[int]int{8: 1, 9: 31}, sizes(287, 32))

	// Partitions are contiguous, cover [0, K) and never differ by more than one
	for K := 1; K < 500; K++ {
		for _, Np := range []int{1, 3, 7, 32} {
			pm := NewPartitionMap(Np, K)
			next, lo, hi := 0, K, 0
			for _, p := range pm.Partitions {
				assert.Equal(t, next, p[0])
				next = p[1]
				if n := p[1] - p[0]; n < lo {
					lo = n
				}
				if n := p[1] - p[0]; n > hi {
					hi = n
				}
			}
			assert.Equal(t, K, next)
			assert.LessOrEqual(t, hi-lo, 1)
		}
	}
}

func TestParallelDegreeFor(t *testing.T) {
	assert.Equal(t, 4, ParallelDegreeFor(4, 100))
	assert.Equal(t, 3, ParallelDegreeFor(8, 3))
	assert.Equal(t, 1, ParallelDegreeFor(8, 0))
	np := ParallelDegreeFor(0, 1<<30)
	assert.Equal(t, runtime.NumCPU(), np)
}
