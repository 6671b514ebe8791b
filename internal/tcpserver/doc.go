// Package tcpserver owns the listening socket: address validation, the
// accept loop with per-connection goroutine fan-out, and graceful close
// driven by context cancellation.
package tcpserver
