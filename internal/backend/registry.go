package backend

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
)

// Backend identifies one upstream server by host and port. The topology is
// fixed at startup; a backend's position in the registry is its identity.
type Backend struct {
	Host string
	Port int
}

// Addr returns the dialable host:port form of the backend address.
func (b Backend) Addr() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

// Registry holds the backend set and its mutable runtime state. Health flags,
// active-connection counts, and request counts are independent synchronization
// domains: health lives under one mutex so snapshots are consistent, while
// the counters are per-backend atomics that never contend with health reads
// or with counters of other backends. No cross-field atomicity is promised.
type Registry struct {
	backends []Backend

	healthMu sync.Mutex
	healthy  []bool

	active   []atomic.Int64
	requests []atomic.Int64
}

// NewRegistry builds a registry over the given backends. Every backend
// starts out healthy.
func NewRegistry(backends []Backend) *Registry {
	n := len(backends)

	r := &Registry{
		backends: append([]Backend(nil), backends...),
		healthy:  make([]bool, n),
		active:   make([]atomic.Int64, n),
		requests: make([]atomic.Int64, n),
	}

	for i := range r.healthy {
		r.healthy[i] = true
	}

	return r
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	return len(r.backends)
}

// Backend returns the backend at the given index.
func (r *Registry) Backend(index int) Backend {
	return r.backends[index]
}

// HealthyIndices returns a point-in-time copy of the indices currently
// marked healthy, in registry order. The copy is disconnected: the healthy
// set may change the moment the lock is released.
func (r *Registry) HealthyIndices() []int {
	r.healthMu.Lock()
	defer r.healthMu.Unlock()

	indices := make([]int, 0, len(r.healthy))
	for i, h := range r.healthy {
		if h {
			indices = append(indices, i)
		}
	}

	return indices
}

// SetHealthy updates one backend's health flag.
// Returns true if the flag changed, false if it was already in that state.
func (r *Registry) SetHealthy(index int, healthy bool) (changed bool) {
	r.healthMu.Lock()
	defer r.healthMu.Unlock()

	if r.healthy[index] == healthy {
		return false
	}

	r.healthy[index] = healthy
	return true
}

// IsHealthy reports the current health flag for one backend.
func (r *Registry) IsHealthy(index int) bool {
	r.healthMu.Lock()
	defer r.healthMu.Unlock()
	return r.healthy[index]
}

// IncrementActive records that a relay has started using the backend.
func (r *Registry) IncrementActive(index int) {
	r.active[index].Add(1)
}

// DecrementActive records that a relay has finished with the backend.
// The count never goes below zero.
func (r *Registry) DecrementActive(index int) {
	for {
		cur := r.active[index].Load()
		if cur == 0 {
			return
		}
		if r.active[index].CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// ActiveConnections returns the current active-connection count for one backend.
func (r *Registry) ActiveConnections(index int) int64 {
	return r.active[index].Load()
}

// IncrementRequests records one completed forwarded request for the backend.
func (r *Registry) IncrementRequests(index int) {
	r.requests[index].Add(1)
}

// RequestCount returns the total forwarded requests for one backend.
func (r *Registry) RequestCount(index int) int64 {
	return r.requests[index].Load()
}

// LeastLoadedAmong returns the candidate index with the fewest active
// connections, ties broken by candidate order. Returns -1 when the
// candidate list is empty.
func (r *Registry) LeastLoadedAmong(indices []int) int {
	selected := -1
	var minConn int64

	for _, idx := range indices {
		conns := r.active[idx].Load()
		if selected == -1 || conns < minConn {
			minConn = conns
			selected = idx
		}
	}

	return selected
}

// StatusLines renders one line per backend in registry order, e.g.
//
//	127.0.0.1:9001 [healthy] Requests: 12 Active: 3
func (r *Registry) StatusLines() []string {
	r.healthMu.Lock()
	healthy := append([]bool(nil), r.healthy...)
	r.healthMu.Unlock()

	lines := make([]string, 0, len(r.backends))
	for i, b := range r.backends {
		status := "unhealthy"
		if healthy[i] {
			status = "healthy"
		}
		lines = append(lines, fmt.Sprintf("%s:%d [%s] Requests: %d Active: %d",
			b.Host, b.Port, status, r.requests[i].Load(), r.active[i].Load()))
	}

	return lines
}
