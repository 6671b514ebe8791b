package handler

import (
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/ashimangshu/Load-Balancer/internal/loadbalancer"
)

// bufferSize bounds the single read on each leg of the relay.
const bufferSize = 8192

const responseUnavailable = "HTTP/1.1 503 Service Unavailable\r\nContent-Length: 0\r\nConnection: close\r\n\r\n"

// ClientHandler relays exactly one request and one response between an
// accepted client connection and a selected backend, then closes both sides.
// It is deliberately single-shot: forwarded bytes are opaque and no tunnel
// is kept open past the first exchange.
type ClientHandler struct {
	logger      *slog.Logger
	balancer    *loadbalancer.LoadBalancer
	dialTimeout time.Duration
	ioTimeout   time.Duration
}

func NewClientHandler(
	logger *slog.Logger,
	balancer *loadbalancer.LoadBalancer,
	dialTimeout time.Duration,
	ioTimeout time.Duration,
) *ClientHandler {
	return &ClientHandler{
		logger:      logger,
		balancer:    balancer,
		dialTimeout: dialTimeout,
		ioTimeout:   ioTimeout,
	}
}

// Handle runs the relay for one accepted connection. It owns clientConn and
// closes it on every path.
func (h *ClientHandler) Handle(clientConn net.Conn) {
	defer clientConn.Close()

	clientConn.SetDeadline(time.Now().Add(h.ioTimeout))

	clientIP := extractClientIP(clientConn.RemoteAddr())

	index, err := h.balancer.Select(clientIP)
	if err != nil {
		h.logger.Warn("No healthy backends available", slog.String("client", clientIP))
		h.writeUnavailable(clientConn)
		return
	}

	registry := h.balancer.Registry()
	b := registry.Backend(index)

	backendConn, err := net.DialTimeout("tcp", b.Addr(), h.dialTimeout)
	if err != nil {
		h.logger.Warn("Backend connection failed",
			slog.String("backend", b.Addr()),
			slog.Any("err", err))
		h.writeUnavailable(clientConn)
		return
	}
	defer backendConn.Close()

	backendConn.SetDeadline(time.Now().Add(h.ioTimeout))

	// The backend counts as in use from here until cleanup, no matter how
	// the relay ends.
	registry.IncrementActive(index)
	requestForwarded := false
	defer func() {
		if requestForwarded {
			registry.IncrementRequests(index)
		}
		registry.DecrementActive(index)
	}()

	h.logger.Info("Forwarding to backend",
		slog.String("client", clientIP),
		slog.String("backend", b.Addr()))

	buf := make([]byte, bufferSize)

	// Request leg: one bounded read from the client, one write to the backend.
	// A read that returns bytes alongside an error still counts as a request.
	n, err := clientConn.Read(buf)
	if n == 0 {
		h.logger.Debug("Client sent no request",
			slog.String("client", clientIP),
			slog.Any("err", err))
		return
	}
	if _, err := writeAll(backendConn, buf[:n]); err != nil {
		h.logger.Warn("Failed to forward request",
			slog.String("backend", b.Addr()),
			slog.Any("err", err))
		return
	}
	requestForwarded = true

	// Response leg: tolerated on failure, the request was already delivered.
	m, err := backendConn.Read(buf)
	if m == 0 {
		h.logger.Debug("Backend sent no response",
			slog.String("backend", b.Addr()),
			slog.Any("err", err))
		return
	}
	if _, err := writeAll(clientConn, buf[:m]); err != nil {
		h.logger.Debug("Failed to forward response",
			slog.String("client", clientIP),
			slog.Any("err", err))
	}
}

func (h *ClientHandler) writeUnavailable(conn net.Conn) {
	if _, err := writeAll(conn, []byte(responseUnavailable)); err != nil {
		h.logger.Debug("Failed to write 503 response", slog.Any("err", err))
	}
}

// writeAll keeps writing until the buffer is drained or the write fails.
func writeAll(conn net.Conn, data []byte) (int, error) {
	total := 0
	for total < len(data) {
		n, err := conn.Write(data[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, errors.New("connection wrote zero bytes")
		}
	}
	return total, nil
}

func extractClientIP(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
