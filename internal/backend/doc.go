// Package backend implements the backend registry: the fixed set of upstream
// servers together with their health flags, active-connection counts, and
// request counters, each in its own synchronization domain.
package backend
