package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashimangshu/Load-Balancer/config"
	"github.com/ashimangshu/Load-Balancer/internal/backend"
	"github.com/ashimangshu/Load-Balancer/internal/handler"
	"github.com/ashimangshu/Load-Balancer/internal/healthcheck"
	"github.com/ashimangshu/Load-Balancer/internal/loadbalancer"
	"github.com/ashimangshu/Load-Balancer/internal/status"
	"github.com/ashimangshu/Load-Balancer/internal/strategy"
	"github.com/ashimangshu/Load-Balancer/internal/tcpserver"
	"github.com/ashimangshu/Load-Balancer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := buildRegistry(cfg)

	strategyName := cfg.Strategy.Type
	if len(os.Args) > 1 {
		strategyName = os.Args[1]
	}

	strat := strategy.New(strategyName, registry)
	lb := loadbalancer.New(registry, strat)

	log.Info("Configured load balancer",
		slog.String("strategy", strategyName),
		slog.Int("backends", registry.Len()))

	timeouts, err := parseTimeouts(cfg)
	if err != nil {
		log.Error("Failed to parse timeouts", slog.Any("err", err))
		os.Exit(1)
	}

	checker := healthcheck.NewChecker(
		registry,
		status.NewWriter(cfg.Status.File),
		timeouts.probeInterval,
		timeouts.probeTimeout,
		log,
	)

	checkerDone := make(chan struct{})
	go func() {
		defer close(checkerDone)
		checker.Run(ctx)
	}()

	clientHandler := handler.NewClientHandler(log, lb, timeouts.dialTimeout, timeouts.ioTimeout)

	srv, err := tcpserver.New(cfg.Server.Address, clientHandler, log)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting load balancer", slog.Any("err", err))
			cancel()
			<-checkerDone
			os.Exit(1)
		}
	}

	// The checker finishes its in-flight probe round before returning.
	<-checkerDone
}

type timeouts struct {
	probeInterval time.Duration
	probeTimeout  time.Duration
	dialTimeout   time.Duration
	ioTimeout     time.Duration
}

func parseTimeouts(cfg *config.Config) (timeouts, error) {
	var t timeouts
	var err error

	if t.probeInterval, err = time.ParseDuration(cfg.HealthCheck.Interval); err != nil {
		return t, err
	}
	if t.probeTimeout, err = time.ParseDuration(cfg.HealthCheck.Timeout); err != nil {
		return t, err
	}
	if t.dialTimeout, err = time.ParseDuration(cfg.Forward.DialTimeout); err != nil {
		return t, err
	}
	if t.ioTimeout, err = time.ParseDuration(cfg.Forward.IOTimeout); err != nil {
		return t, err
	}

	return t, nil
}

func buildRegistry(cfg *config.Config) *backend.Registry {
	backends := make([]backend.Backend, 0, len(cfg.Backends))
	for _, b := range cfg.Backends {
		backends = append(backends, backend.Backend{Host: b.Host, Port: b.Port})
	}

	return backend.NewRegistry(backends)
}
