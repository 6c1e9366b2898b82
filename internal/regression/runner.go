package regression

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/buckshot/internal/agent"
	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/env"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/simulator"
)

// DefaultAlpha is the significance level used when Config.Alpha is zero.
const DefaultAlpha = 0.05

// Config describes a comparison run. Every agent plays the same game seeds.
type Config struct {
	// Agents are compared against the first entry, the baseline.
	Agents      []string
	Games       int
	Workers     int
	Seed        int64
	Rewards     env.Rewards
	Weights     dealer.Weights
	GameOptions []game.Option
	GameTimeout time.Duration
	Alpha       float64

	Logger *log.Logger
	Clock  quartz.Clock
}

// Row compares one challenger with the baseline.
type Row struct {
	Agent   string
	Reward  Comparison
	WinRate Comparison
}

// Result holds the per-agent reports and the comparisons.
type Result struct {
	Baseline string
	Alpha    float64
	Reports  map[string]*simulator.Report
	Rows     []Row
}

// Run plays every agent and compares each challenger with the baseline.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if len(cfg.Agents) < 2 {
		return nil, errors.New("need at least two agents to compare")
	}
	seen := make(map[string]bool, len(cfg.Agents))
	for _, name := range cfg.Agents {
		if !agent.Known(name) {
			return nil, fmt.Errorf("unknown agent %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("agent %q listed twice", name)
		}
		seen[name] = true
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	logger := cfg.Logger.WithPrefix("regression")

	res := &Result{
		Baseline: cfg.Agents[0],
		Alpha:    cfg.Alpha,
		Reports:  make(map[string]*simulator.Report, len(cfg.Agents)),
	}
	for _, name := range cfg.Agents {
		logger.Info("Running agent", "agent", name, "games", cfg.Games, "seed", cfg.Seed)
		report, err := simulator.New(simulator.Config{
			Games:       cfg.Games,
			Workers:     cfg.Workers,
			Seed:        cfg.Seed,
			Agent:       name,
			Rewards:     cfg.Rewards,
			Weights:     cfg.Weights,
			GameOptions: cfg.GameOptions,
			GameTimeout: cfg.GameTimeout,
			Logger:      cfg.Logger,
			Clock:       cfg.Clock,
		}).Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}
		res.Reports[name] = report
	}

	base := res.Reports[res.Baseline].Stats
	for _, name := range cfg.Agents[1:] {
		s := res.Reports[name].Stats
		row := Row{
			Agent:   name,
			Reward:  Compare(RewardSample(s), RewardSample(base)),
			WinRate: Compare(WinSample(s), WinSample(base)),
		}
		logger.Info("Compared with baseline",
			"agent", name,
			"baseline", res.Baseline,
			"reward_diff", row.Reward.Difference,
			"reward_p", row.Reward.PValue,
			"win_rate_diff", row.WinRate.Difference,
			"win_rate_p", row.WinRate.PValue)
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}
