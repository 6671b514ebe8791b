package healthcheck

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashimangshu/Load-Balancer/internal/backend"
	"github.com/ashimangshu/Load-Balancer/internal/status"
)

const probeReadLimit = 1024

// Checker periodically probes every registered backend over a dedicated TCP
// connection and records the result in the registry. After each full cycle
// it persists a status snapshot.
type Checker struct {
	registry *backend.Registry
	writer   *status.Writer
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewChecker(
	registry *backend.Registry,
	writer *status.Writer,
	interval time.Duration,
	timeout time.Duration,
	logger *slog.Logger,
) *Checker {
	return &Checker{
		registry: registry,
		writer:   writer,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run probes all backends on the configured interval until ctx is canceled.
// It returns only after the in-flight probe round has finished, so callers
// can rely on no probe activity once Run returns.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Health checker stopped")
			return

		case <-ticker.C:
			c.runCycle()
		}
	}
}

// runCycle probes every backend concurrently and waits for all probes to
// finish before persisting the snapshot. One backend's failure never
// affects another's probe.
func (c *Checker) runCycle() {
	var g errgroup.Group

	for i := 0; i < c.registry.Len(); i++ {
		index := i
		g.Go(func() error {
			c.probe(index)
			return nil
		})
	}
	g.Wait()

	if err := c.writer.Write(c.registry); err != nil {
		c.logger.Error("Failed to write status file",
			slog.String("file", c.writer.Path()),
			slog.Any("err", err))
	}
}

func (c *Checker) probe(index int) {
	b := c.registry.Backend(index)

	alive := c.probeOnce(b)
	changed := c.registry.SetHealthy(index, alive)

	if changed {
		if alive {
			c.logger.Info("Backend is back up", slog.String("backend", b.Addr()))
		} else {
			c.logger.Warn("Backend is down", slog.String("backend", b.Addr()))
		}
	}
}

// probeOnce dials the backend, sends a minimal health request, and checks
// the response prefix for a 200 status line. Any error along the way means
// unhealthy.
func (c *Checker) probeOnce(b backend.Backend) bool {
	conn, err := net.DialTimeout("tcp", b.Addr(), c.timeout)
	if err != nil {
		return false
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return false
	}

	request := "GET /health HTTP/1.1\r\nHost: " + b.Host + "\r\nConnection: close\r\n\r\n"
	if _, err := conn.Write([]byte(request)); err != nil {
		return false
	}

	// One bounded read is enough; only the status line matters.
	buf := make([]byte, probeReadLimit)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return false
	}

	prefix := string(buf[:n])
	return strings.Contains(prefix, "HTTP/1.1 200") || strings.Contains(prefix, "HTTP/1.0 200")
}
