package loadbalancer

import (
	"errors"

	"github.com/ashimangshu/Load-Balancer/internal/backend"
	"github.com/ashimangshu/Load-Balancer/internal/strategy"
)

// ErrNoHealthyBackends is returned when the healthy set is empty at
// selection time. Callers surface it to the client as a 503.
var ErrNoHealthyBackends = errors.New("no healthy backends")

// LoadBalancer resolves a client to a backend index: it snapshots the healthy
// set from the registry and delegates the choice to the configured strategy.
// Selection never mutates backend state.
type LoadBalancer struct {
	registry *backend.Registry
	strategy strategy.Strategy
}

func New(registry *backend.Registry, strat strategy.Strategy) *LoadBalancer {
	return &LoadBalancer{
		registry: registry,
		strategy: strat,
	}
}

// Select returns the index of the backend chosen for the given client
// address, or ErrNoHealthyBackends when nothing is available.
func (lb *LoadBalancer) Select(clientAddr string) (int, error) {
	healthy := lb.registry.HealthyIndices()
	if len(healthy) == 0 {
		return -1, ErrNoHealthyBackends
	}

	index := lb.strategy.Select(clientAddr, healthy)
	if index < 0 {
		return -1, ErrNoHealthyBackends
	}

	return index, nil
}

// Registry exposes the underlying backend registry.
func (lb *LoadBalancer) Registry() *backend.Registry {
	return lb.registry
}
