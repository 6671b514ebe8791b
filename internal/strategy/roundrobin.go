package strategy

import (
	"sync/atomic"
)

type roundRobinStrategy struct {
	current atomic.Uint64
}

// Select advances the shared cursor exactly once per call. The atomic add
// guarantees no two concurrent calls observe the same pre-advance value.
func (rb *roundRobinStrategy) Select(_ string, healthy []int) int {
	if len(healthy) == 0 {
		return -1
	}

	n := rb.current.Add(1)

	return healthy[(n-1)%uint64(len(healthy))]
}

func NewRoundRobinStrategy() Strategy {
	return &roundRobinStrategy{}
}
