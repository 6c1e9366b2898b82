// Package simulator plays many games in parallel and aggregates the results.
package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/buckshot/internal/agent"
	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/env"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/gameid"
	"github.com/lox/buckshot/internal/randutil"
	"github.com/lox/buckshot/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for a simulation run.
type Config struct {
	Games   int
	Workers int
	Seed    int64
	Agent   string
	Rewards env.Rewards
	// Weights are used as given; the zero value is an honest dealer.
	Weights     dealer.Weights
	GameOptions []game.Option
	// GameTimeout bounds a single game; zero disables it.
	GameTimeout time.Duration
	// KeepEpisodes retains every episode in the report.
	KeepEpisodes bool
	// Progress, when set, is called after each finished game from the worker
	// that played it.
	Progress func(done, total int)

	Logger *log.Logger
	Clock  quartz.Clock
}

// Simulator runs games against the dealer.
type Simulator struct {
	config Config
	ids    *gameid.Generator
}

// New creates a simulator. A zero Workers means one per CPU and a zero
// Rewards means the default table.
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Rewards == (env.Rewards{}) {
		config.Rewards = env.DefaultRewards()
	}
	if config.Agent == "" {
		config.Agent = "random"
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	return &Simulator{
		config: config,
		ids:    gameid.NewGenerator(config.Clock, randutil.Derive(config.Seed, randutil.StreamAgent+1)),
	}
}

// blockSize is the number of consecutive games a worker plays and aggregates
// before taking its next block. It is fixed so block boundaries do not depend
// on the worker count.
const blockSize = 8

// Run plays config.Games games and returns the aggregated report. Game i is
// always played from the same seed whatever the worker count, and block
// statistics are merged in game order, so a run is reproducible from its base
// seed.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	cfg := s.config
	if cfg.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", cfg.Games)
	}
	if _, err := agent.New(cfg.Agent, randutil.New(0), nil); err != nil {
		return nil, err
	}
	blocks := make([]statistics.Statistics, (cfg.Games+blockSize-1)/blockSize)
	workers := min(cfg.Workers, len(blocks))
	logger := cfg.Logger.WithPrefix("simulator")

	logger.Info("Starting simulation",
		"games", cfg.Games,
		"workers", workers,
		"agent", cfg.Agent,
		"seed", cfg.Seed)

	start := cfg.Clock.Now()
	episodes := make([]env.Episode, cfg.Games)
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			e := env.New(
				env.WithRewards(cfg.Rewards),
				env.WithDealerWeights(cfg.Weights),
				env.WithGameOptions(cfg.GameOptions...),
				env.WithLogger(cfg.Logger),
				env.WithIDs(s.ids))

			for b := w; b < len(blocks); b += workers {
				for i := b * blockSize; i < min((b+1)*blockSize, cfg.Games); i++ {
					ep, err := s.playGame(ctx, e, i)
					if err != nil {
						return err
					}
					episodes[i] = ep
					blocks[b].Add(Result(ep))
					n := int(done.Add(1))
					if cfg.Progress != nil {
						cfg.Progress(n, cfg.Games)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for i := range blocks {
		stats.Merge(&blocks[i])
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	report := &Report{
		Agent:   cfg.Agent,
		Seed:    cfg.Seed,
		Workers: workers,
		Elapsed: cfg.Clock.Since(start),
		Stats:   stats,
	}
	if cfg.KeepEpisodes {
		report.Episodes = episodes
	}

	logger.Info("Simulation finished",
		"games", stats.Games,
		"winRate", fmt.Sprintf("%.3f", stats.WinRate()),
		"meanReward", fmt.Sprintf("%.3f", stats.Mean()),
		"elapsed", report.Elapsed)
	return report, nil
}

// playGame runs game i under the per-game timeout.
func (s *Simulator) playGame(ctx context.Context, e *env.Env, i int) (env.Episode, error) {
	seed := randutil.GameSeed(s.config.Seed, i)
	d, err := agent.New(s.config.Agent, randutil.Derive(seed, randutil.StreamAgent), s.config.Logger)
	if err != nil {
		return env.Episode{}, err
	}

	gctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.config.GameTimeout > 0 {
		timer := s.config.Clock.AfterFunc(s.config.GameTimeout, cancel)
		defer timer.Stop()
	}

	ep, err := e.Run(gctx, seed, d)
	if err != nil {
		if ctx.Err() == nil && gctx.Err() != nil {
			return ep, fmt.Errorf("game %d (seed %d) timed out after %v", i, seed, s.config.GameTimeout)
		}
		return ep, fmt.Errorf("game %d (seed %d): %w", i, seed, err)
	}
	return ep, nil
}

// Result converts an episode to a statistics entry.
func Result(ep env.Episode) statistics.GameResult {
	return statistics.GameResult{
		Seed:     ep.Seed,
		Won:      ep.Won(),
		Reward:   ep.Reward,
		Rounds:   ep.Rounds,
		Turns:    ep.Turns,
		Actions:  ep.Actions,
		AIHP:     ep.HP[game.AI],
		Outcomes: ep.Outcomes,
		Tiers:    ep.Tiers,
	}
}
