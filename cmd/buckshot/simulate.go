package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/simulator"
)

// SimulateCmd plays a batch of games with a built-in agent in the AI seat.
type SimulateCmd struct {
	Games    int           `short:"n" help:"Number of games (overrides config)"`
	Workers  int           `short:"w" help:"Parallel workers, 0 for one per CPU (overrides config)"`
	Seed     *int64        `help:"Base seed (overrides config)"`
	Agent    string        `short:"a" help:"Agent in the AI seat: greedy, random or uniform (overrides config)"`
	Timeout  time.Duration `help:"Per-game timeout (overrides config)"`
	Honest   bool          `help:"Never let the dealer cheat"`
	Report   string        `short:"o" type:"path" help:"Write a JSON report to this file (overrides config)"`
	Episodes bool          `help:"Include every episode in the JSON report"`
	NoColor  bool          `help:"Disable colour in the summary"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	logger := g.Logger()
	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}

	sim := cfg.Simulation
	if c.Games > 0 {
		sim.Games = c.Games
	}
	if c.Workers > 0 {
		sim.Workers = c.Workers
	}
	if c.Seed != nil {
		sim.Seed = *c.Seed
	}
	if c.Agent != "" {
		sim.Agent = c.Agent
	}
	if c.Timeout > 0 {
		sim.GameTimeout = c.Timeout
	}
	if c.Report != "" {
		sim.Report = c.Report
	}
	weights := cfg.Dealer
	if c.Honest {
		weights = dealer.Weights{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting simulation",
		"games", sim.Games,
		"agent", sim.Agent,
		"seed", sim.Seed,
		"super_cheat", weights.SuperCheat,
		"normal_cheat", weights.NormalCheat)

	report, err := simulator.New(simulator.Config{
		Games:        sim.Games,
		Workers:      sim.Workers,
		Seed:         sim.Seed,
		Agent:        sim.Agent,
		Rewards:      cfg.Rewards,
		Weights:      weights,
		GameOptions:  cfg.GameOptions(),
		GameTimeout:  sim.GameTimeout,
		KeepEpisodes: c.Episodes,
		Progress:     newProgress(logger, sim.Games).update,
		Logger:       logger,
	}).Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	fmt.Println(renderSummary(report.Summary(), c.NoColor))

	if sim.Report != "" {
		if err := report.WriteFile(sim.Report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Info("Report written", "path", sim.Report)
	}
	return nil
}
