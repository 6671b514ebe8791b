package strategy

import (
	"github.com/ashimangshu/Load-Balancer/internal/backend"
)

type leastConnStrategy struct {
	registry *backend.Registry
}

func (l *leastConnStrategy) Select(_ string, healthy []int) int {
	if len(healthy) == 0 {
		return -1
	}

	return l.registry.LeastLoadedAmong(healthy)
}

func NewLeastConnStrategy(registry *backend.Registry) Strategy {
	return &leastConnStrategy{registry: registry}
}
