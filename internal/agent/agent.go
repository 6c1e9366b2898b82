// Package agent provides baseline deciders for the AI seat.
package agent

import (
	"fmt"
	rand "math/rand/v2"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/buckshot/internal/game"
)

// Factory builds a decider from its own RNG stream.
type Factory func(rng *rand.Rand, logger *log.Logger) game.Decider

var registry = map[string]Factory{
	"random":  func(rng *rand.Rand, logger *log.Logger) game.Decider { return NewRandom(rng, logger) },
	"uniform": func(rng *rand.Rand, logger *log.Logger) game.Decider { return NewUniform(rng, logger) },
	"greedy":  func(rng *rand.Rand, logger *log.Logger) game.Decider { return NewGreedy(rng, logger) },
}

// Names lists the registered agents in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether name is a registered agent.
func Known(name string) bool {
	_, ok := registry[strings.ToLower(name)]
	return ok
}

// New returns the agent registered as name.
func New(name string, rng *rand.Rand, logger *log.Logger) (game.Decider, error) {
	f, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q (have %s)", name, strings.Join(Names(), ", "))
	}
	if rng == nil {
		panic("rng is required for agent creation")
	}
	return f(rng, logger), nil
}

// Random picks uniformly among the legal actions.
type Random struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandom creates a Random agent.
func NewRandom(rng *rand.Rand, logger *log.Logger) *Random {
	return &Random{rng: rng, logger: logger}
}

func (r *Random) SelectAction(obs game.Observation) game.Action {
	legal := obs.LegalActions()
	return legal[r.rng.IntN(len(legal))]
}

// Uniform picks uniformly from the whole action set, illegal actions
// included. It is the untrained-policy baseline.
type Uniform struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewUniform creates a Uniform agent.
func NewUniform(rng *rand.Rand, logger *log.Logger) *Uniform {
	return &Uniform{rng: rng, logger: logger}
}

func (u *Uniform) SelectAction(game.Observation) game.Action {
	return game.Action(u.rng.IntN(game.NumActions))
}
