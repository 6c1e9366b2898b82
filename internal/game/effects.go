package game

import (
	"fmt"

	"github.com/lox/buckshot/internal/shotgun"
)

// useItem applies one item for seat. Using an item the seat does not hold is
// Illegal and leaves the state untouched.
func (e *Engine) useItem(seat Seat, it Item) (Result, error) {
	res := Result{Seat: seat, Action: UseItem(it)}
	actor := &e.state.Players[seat]
	if !actor.Items.Has(it) {
		res.Outcome = Illegal
		return res, nil
	}
	actor.Items.Remove(it)

	gun := &e.state.Shotgun
	switch it {
	case Beer:
		s, err := gun.Eject(e.rng)
		if err != nil {
			return res, err
		}
		res.Shell = shotgun.KnowledgeOf(s)
		res.Outcome = Beneficial
		if gun.Empty() {
			e.startRound()
			res.Reloaded = true
		}

	case Glass:
		s, err := gun.Resolve(e.rng)
		if err != nil {
			return res, err
		}
		res.Shell = shotgun.KnowledgeOf(s)
		res.Outcome = Beneficial

	case Smoke:
		res.Outcome = Neutral
		if actor.HP < e.state.MaxHP {
			actor.HP++
			res.Outcome = Beneficial
		}

	case Inverter:
		if _, err := gun.Invert(); err != nil {
			return res, err
		}
		res.Outcome = Beneficial

	case Cuffs:
		opp := &e.state.Players[seat.Opponent()]
		res.Outcome = Neutral
		if opp.CanPlay {
			opp.CanPlay = false
			res.Outcome = Beneficial
		}

	case Saw:
		actor.Sawed = true
		switch gun.Chamber() {
		case shotgun.KnownBlank:
			res.Outcome = SelfHarm
		case shotgun.KnownLive, shotgun.Unknown:
			res.Outcome = Beneficial
		}

	default:
		return res, fmt.Errorf("%w: item %d", ErrUnknownAction, uint8(it))
	}
	return res, nil
}
