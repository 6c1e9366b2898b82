// Package env wraps a game and its dealer as a reinforcement-learning style
// environment: Reset returns the first observation, Step returns the next
// observation with a scalar reward.
package env

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/buckshot/internal/dealer"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/gameid"
	"github.com/lox/buckshot/internal/randutil"
)

var ErrNotReset = errors.New("env: Reset has not been called")

// Option configures an Env.
type Option func(*Env)

// WithRewards sets the reward table. It must pass Rewards.Validate.
func WithRewards(r Rewards) Option {
	return func(e *Env) { e.rewards = r }
}

// WithDealerWeights sets the dealer's cheat odds.
func WithDealerWeights(w dealer.Weights) Option {
	return func(e *Env) { e.weights = w }
}

// WithGameOptions passes options through to every engine the env creates.
func WithGameOptions(opts ...game.Option) Option {
	return func(e *Env) { e.gameOpts = append(e.gameOpts, opts...) }
}

// WithLogger sets the logger handed to the engine and the dealer.
func WithLogger(logger *log.Logger) Option {
	return func(e *Env) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIDs sets the generator used to name each game.
func WithIDs(g *gameid.Generator) Option {
	return func(e *Env) { e.ids = g }
}

// Env is one environment instance. It is not safe for concurrent use; run
// one Env per goroutine.
type Env struct {
	rewards  Rewards
	weights  dealer.Weights
	gameOpts []game.Option
	logger   *log.Logger
	ids      *gameid.Generator

	engine *game.Engine
	ep     Episode
}

// New creates an environment. It panics on an invalid reward table or
// dealer weights.
func New(opts ...Option) *Env {
	e := &Env{
		rewards: DefaultRewards(),
		weights: dealer.DefaultWeights(),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.rewards.Validate(); err != nil {
		panic(err.Error())
	}
	if err := e.weights.Validate(); err != nil {
		panic(err.Error())
	}
	if e.ids == nil {
		e.ids = gameid.NewGenerator(nil, nil)
	}
	return e
}

// Reset starts a new game. The engine and the dealer draw from separate
// streams derived from seed, so the same seed and the same actions always
// replay the same game.
func (e *Env) Reset(seed int64) game.Observation {
	id := e.ids.Generate()
	e.ep = Episode{Seed: seed, GameID: id}

	d := dealer.New(randutil.Derive(seed, randutil.StreamDealer),
		dealer.WithWeights(e.weights),
		dealer.WithLogger(e.logger.With("game", id)),
		dealer.WithTierHook(e.ep.countTier))

	opts := make([]game.Option, 0, len(e.gameOpts)+3)
	opts = append(opts, e.gameOpts...)
	opts = append(opts,
		game.WithLogger(e.logger),
		game.WithGameID(id),
		game.WithListener(e.ep.countResult))
	e.engine = game.NewEngine(randutil.Derive(seed, randutil.StreamEngine), d, opts...)
	return e.engine.Observe()
}

// Step applies one AI action and returns the next observation, the reward for
// the action, whether the game is over, and the resolved result.
func (e *Env) Step(a game.Action) (game.Observation, float64, bool, game.Result, error) {
	if e.engine == nil {
		return game.Observation{}, 0, false, game.Result{}, ErrNotReset
	}
	res, err := e.engine.Step(a)
	if err != nil {
		return e.engine.Observe(), 0, e.engine.Done(), res, err
	}

	winner, _ := e.engine.Winner()
	reward := e.rewards.For(res, winner)
	e.ep.Reward += reward
	e.ep.Actions++
	if res.Done {
		e.finish()
	}
	return e.engine.Observe(), reward, res.Done, res, nil
}

// Started reports whether Reset has been called.
func (e *Env) Started() bool { return e.engine != nil }

// Observe returns the current observation.
func (e *Env) Observe() game.Observation {
	if e.engine == nil {
		return game.Observation{}
	}
	return e.engine.Observe()
}

// State returns the current game state.
func (e *Env) State() game.State {
	if e.engine == nil {
		return game.State{}
	}
	return e.engine.State()
}

// Episode returns the running totals of the current game.
func (e *Env) Episode() Episode { return e.ep }

// Run plays a whole game from seed with d choosing the AI's actions.
func (e *Env) Run(ctx context.Context, seed int64, d game.Decider) (Episode, error) {
	obs := e.Reset(seed)
	limit := e.engine.StepLimit()
	for !obs.Done {
		if err := ctx.Err(); err != nil {
			return e.ep, err
		}
		if e.ep.Actions >= limit {
			return e.ep, fmt.Errorf("%w: %d actions", game.ErrStepLimit, e.ep.Actions)
		}
		var err error
		obs, _, _, _, err = e.Step(d.SelectAction(obs))
		if err != nil {
			return e.ep, fmt.Errorf("game %s: %w", e.ep.GameID, err)
		}
	}
	return e.ep, nil
}

func (e *Env) finish() {
	st := e.engine.State()
	e.ep.Done = true
	e.ep.Winner = st.Winner
	e.ep.Rounds = st.Round
	e.ep.Turns = st.Turns
	e.ep.HP = [2]int{st.Player(game.AI).HP, st.Player(game.Dealer).HP}
	e.logger.Debug("Episode finished",
		"game", e.ep.GameID,
		"seed", e.ep.Seed,
		"winner", e.ep.Winner,
		"reward", e.ep.Reward,
		"actions", e.ep.Actions)
}
