package agent

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/buckshot/internal/game"
	"github.com/lox/buckshot/internal/shotgun"
)

// Greedy plays the odds: it looks at the chamber when it can, heals when
// hurt, and shoots whoever the likelier shell favours. Ties are broken with
// a coin.
type Greedy struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewGreedy creates a Greedy agent.
func NewGreedy(rng *rand.Rand, logger *log.Logger) *Greedy {
	return &Greedy{rng: rng, logger: logger}
}

func (g *Greedy) SelectAction(obs game.Observation) game.Action {
	a, reason := g.decide(obs)
	if g.logger != nil {
		g.logger.Debug("Greedy decision", "action", a, "reason", reason)
	}
	return a
}

func (g *Greedy) decide(obs game.Observation) (game.Action, string) {
	has := obs.Items.Has

	if has(game.Smoke) && obs.HP < obs.MaxHP {
		return game.UseSmoke, "heal"
	}

	chamber := obs.Chamber
	switch {
	case chamber != shotgun.Unknown:
	case obs.Live == 0:
		chamber = shotgun.KnownBlank
	case obs.Blank == 0 && !obs.InvertOdds:
		chamber = shotgun.KnownLive
	case has(game.Glass):
		return game.UseGlass, "peek"
	}

	switch chamber {
	case shotgun.KnownLive:
		return g.attack(obs)
	case shotgun.KnownBlank:
		if has(game.Inverter) {
			return game.UseInverter, "turn blank into live"
		}
		return game.ShootSelf, "known blank"
	}

	live, blank := obs.Live, obs.Blank
	if obs.InvertOdds {
		live, blank = blank, live
	}
	switch {
	case live > blank:
		return g.attack(obs)
	case blank > live:
		if has(game.Beer) && !obs.InvertOdds {
			return game.UseBeer, "cycle likely blank"
		}
		return game.ShootSelf, "likely blank"
	case g.rng.IntN(2) == 0:
		return game.ShootOpponent, "coin flip"
	default:
		return game.ShootSelf, "coin flip"
	}
}

// attack spends the damage items and fires at the opponent.
func (g *Greedy) attack(obs game.Observation) (game.Action, string) {
	if obs.Items.Has(game.Cuffs) && !obs.OpponentCuffed {
		return game.UseCuffs, "cuff before shooting"
	}
	if obs.Items.Has(game.Saw) && !obs.Sawed && obs.Chamber == shotgun.KnownLive {
		return game.UseSaw, "saw on known live"
	}
	return game.ShootOpponent, "likely live"
}
