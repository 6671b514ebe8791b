package strategy

import (
	"strings"

	"github.com/ashimangshu/Load-Balancer/internal/backend"
)

// Strategy picks one index out of the healthy set for a client. The healthy
// slice is a point-in-time snapshot owned by the caller; implementations must
// not retain it. Returns -1 when healthy is empty.
type Strategy interface {
	Select(clientAddr string, healthy []int) int
}

// New resolves a strategy name, case-insensitively. Unrecognized names fall
// back to round-robin, matching the command-line contract.
func New(name string, registry *backend.Registry) Strategy {
	switch strings.ToLower(name) {
	case "least":
		return NewLeastConnStrategy(registry)
	case "iphash":
		return NewIPHashStrategy()
	default:
		return NewRoundRobinStrategy()
	}
}
