// Package strategy defines the backend selection interface and implements
// the three algorithms:
//
//   - Round Robin: cycles through the healthy set via a shared atomic cursor
//   - Least Connections: routes to the healthy backend with fewest active connections
//   - IP Hash: hashes the client address for best-effort session affinity
//
// Strategies operate on healthy-index snapshots and never mutate backend state.
package strategy
