package strategy

import (
	"hash/fnv"
)

type ipHashStrategy struct{}

// Select maps a client address deterministically onto the healthy set.
// Affinity is best effort: the mapping shifts when the healthy set changes.
func (s *ipHashStrategy) Select(clientAddr string, healthy []int) int {
	if len(healthy) == 0 {
		return -1
	}

	h := fnv.New32a()
	h.Write([]byte(clientAddr))

	return healthy[h.Sum32()%uint32(len(healthy))]
}

func NewIPHashStrategy() Strategy {
	return &ipHashStrategy{}
}
