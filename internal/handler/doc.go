// Package handler implements the per-connection relay for the load balancer.
// It coordinates backend selection, single-shot request/response forwarding,
// connection accounting, and synthetic error responses.
package handler
