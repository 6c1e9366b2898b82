package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lox/buckshot/internal/server"
	"golang.org/x/sync/errgroup"
)

// ServeCmd runs the websocket environment server.
type ServeCmd struct {
	Addr        string        `help:"Listen address, host:port (overrides config)"`
	IdleTimeout time.Duration `help:"Close sessions idle for this long (overrides config)"`
	MaxSessions int           `help:"Maximum concurrent sessions (overrides config)"`
	Seed        *int64        `help:"Base seed for resets without one (defaults to the simulation seed)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	logger := g.Logger()
	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr()
	if c.Addr != "" {
		addr = c.Addr
	}
	scfg := server.Config{
		IdleTimeout: cfg.Server.IdleTimeout,
		MaxSessions: cfg.Server.MaxSessions,
		Seed:        cfg.Simulation.Seed,
		EnvOptions:  cfg.EnvOptions(),
	}
	if c.IdleTimeout > 0 {
		scfg.IdleTimeout = c.IdleTimeout
	}
	if c.MaxSessions > 0 {
		scfg.MaxSessions = c.MaxSessions
	}
	if c.Seed != nil {
		scfg.Seed = *c.Seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(addr, scfg, logger, nil)
	logger.Info("Serving buckshot environment",
		"addr", addr,
		"idle_timeout", scfg.IdleTimeout,
		"max_sessions", scfg.MaxSessions,
		"seed", scfg.Seed)

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(srv.Start)
	grp.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return grp.Wait()
}
