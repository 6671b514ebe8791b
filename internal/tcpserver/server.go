package tcpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Handler processes one accepted connection. It owns the connection and
// must close it on every path.
type Handler interface {
	Handle(conn net.Conn)
}

// Server owns the listening socket and fans accepted connections out to the
// handler, one goroutine per connection. Fan-out is unbounded: there is no
// admission limit, connections self-terminate on their own I/O timeouts.
type Server struct {
	addr    string
	handler Handler
	logger  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a server for the given listen address. The address is
// validated before any socket is opened.
func New(addr string, handler Handler, logger *slog.Logger) (*Server, error) {
	if err := validateHost(addr); err != nil {
		return nil, err
	}

	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger,
	}, nil
}

// Serve binds the listening socket and accepts connections until ctx is
// canceled. Bind failure is returned to the caller; accept failures are
// logged and the loop continues.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	// Closing the listener is what unblocks Accept on shutdown.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.logger.Info("Load balancer listening", slog.String("addr", s.addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("Accept failed", slog.Any("err", err))
			continue
		}

		go s.handler.Handle(conn)
	}
}

// Addr returns the bound listener address, or the configured address if the
// server has not started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func validateHost(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}
