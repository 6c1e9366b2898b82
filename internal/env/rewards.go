package env

import (
	"errors"
	"fmt"

	"github.com/lox/buckshot/internal/game"
)

var ErrInvalidRewards = errors.New("env: invalid rewards")

// Rewards maps outcome categories to numbers. OpponentDamage is paid per point
// of damage; Win and Loss are added on the final action. SelfHarm is flat so
// a sawed self-hit never scores below an illegal action.
type Rewards struct {
	Illegal        float64 `json:"illegal"`
	SelfHarm       float64 `json:"self_harm"`
	Neutral        float64 `json:"neutral"`
	Beneficial     float64 `json:"beneficial"`
	OpponentDamage float64 `json:"opponent_damage"`
	Win            float64 `json:"win"`
	Loss           float64 `json:"loss"`
}

// DefaultRewards returns the standard reward table.
func DefaultRewards() Rewards {
	return Rewards{
		Illegal:        -5,
		SelfHarm:       -3,
		Neutral:        0,
		Beneficial:     1,
		OpponentDamage: 3,
		Win:            10,
		Loss:           -10,
	}
}

// Validate checks that the table keeps the outcome order strictly and that a
// win pays more than a loss.
func (r Rewards) Validate() error {
	ordered := []float64{r.Illegal, r.SelfHarm, r.Neutral, r.Beneficial, r.OpponentDamage}
	for i := 1; i < len(ordered); i++ {
		if ordered[i] <= ordered[i-1] {
			return fmt.Errorf("%w: %s (%v) must be greater than %s (%v)", ErrInvalidRewards,
				game.Outcome(i), ordered[i], game.Outcome(i-1), ordered[i-1])
		}
	}
	if r.Win <= r.Loss {
		return fmt.Errorf("%w: win (%v) must be greater than loss (%v)", ErrInvalidRewards, r.Win, r.Loss)
	}
	return nil
}

// Outcome returns the base value of one outcome category.
func (r Rewards) Outcome(o game.Outcome) float64 {
	switch o {
	case game.Illegal:
		return r.Illegal
	case game.SelfHarm:
		return r.SelfHarm
	case game.Neutral:
		return r.Neutral
	case game.Beneficial:
		return r.Beneficial
	case game.OpponentDamage:
		return r.OpponentDamage
	default:
		panic(fmt.Sprintf("env: unhandled outcome %d", int8(o)))
	}
}

// For scores one AI result. winner is only read when res.Done is set.
func (r Rewards) For(res game.Result, winner game.Seat) float64 {
	v := r.Outcome(res.Outcome)
	if res.Outcome == game.OpponentDamage && res.Damage > 1 {
		v *= float64(res.Damage)
	}
	if res.Done {
		if winner == game.AI {
			v += r.Win
		} else {
			v += r.Loss
		}
	}
	return v
}
