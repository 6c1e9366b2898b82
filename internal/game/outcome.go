package game

import (
	"fmt"

	"github.com/lox/buckshot/internal/shotgun"
)

// Outcome classifies a resolved action. Values are ordered: a larger outcome
// is always better for the actor. Numeric rewards are assigned by the
// integration layer and must preserve this order.
type Outcome int8

const (
	Illegal Outcome = iota
	SelfHarm
	Neutral
	Beneficial
	OpponentDamage

	NumOutcomes = int(OpponentDamage) + 1
)

var outcomeNames = [NumOutcomes]string{"illegal", "self-harm", "neutral", "beneficial", "opponent-damage"}

func (o Outcome) String() string {
	if o >= 0 && int(o) < NumOutcomes {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int8(o))
}

// Result describes one resolved action, or a skipped turn.
type Result struct {
	Seat    Seat
	Action  Action
	Outcome Outcome
	// Shell is the identity a shot fired, a beer ejected, or a glass revealed.
	// Unknown for everything else.
	Shell shotgun.Knowledge
	// Damage dealt by a shot.
	Damage int
	// Skipped marks a turn lost to cuffs; Action is meaningless then.
	Skipped bool
	// TurnOver is set when the action passed the turn to the opponent.
	TurnOver bool
	// Reloaded is set when the shotgun emptied and a new round started.
	Reloaded bool
	// Done is set once either player is at 0 hp.
	Done bool
}

func (r Result) String() string {
	if r.Skipped {
		return fmt.Sprintf("%s skipped", r.Seat)
	}
	s := fmt.Sprintf("%s %s -> %s", r.Seat, r.Action, r.Outcome)
	if r.Shell != shotgun.Unknown {
		s += " (" + r.Shell.String() + ")"
	}
	if r.Damage > 0 {
		s += fmt.Sprintf(" dmg=%d", r.Damage)
	}
	return s
}
